package embed

import (
	"context"
	"sync"
	"time"
)

const defaultPollInterval = 100 * time.Millisecond

// ScriptHost abstracts the surface the widget bootstrap script loads into.
type ScriptHost interface {
	// Injected reports whether the script has already been injected, by
	// this process or a previous card.
	Injected() bool

	// Inject adds the script. The loader guarantees at most one call.
	Inject()

	// Ready reports whether the widget API is available.
	Ready() bool
}

// loader states. A load in flight is owned by a background poll, not by the
// caller that started it, so a cancelled waiter never corrupts the state.
const (
	stateIdle = iota
	stateLoading
	stateLoaded
)

// Loader coordinates the one-time, process-wide load of the widget script.
// The first Ensure call injects the script (unless the host already carries
// it) and polls until the widget API is available; every concurrent and
// subsequent call observes the same completion without re-injecting or
// re-polling once loaded.
type Loader struct {
	host     ScriptHost
	interval time.Duration

	mu    sync.Mutex
	state int
	done  chan struct{}
}

// NewLoader creates a loader around the host. A non-positive interval gets
// the default 100ms poll.
func NewLoader(host ScriptHost, interval time.Duration) *Loader {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Loader{
		host:     host,
		interval: interval,
	}
}

// Ensure blocks until the widget API is available or ctx is done. It is
// safe for any number of concurrent callers; exactly one injection ever
// happens.
func (l *Loader) Ensure(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case stateLoaded:
		l.mu.Unlock()
		return nil
	case stateLoading:
		done := l.done
		l.mu.Unlock()
		return l.wait(ctx, done)
	}

	// This caller starts the load.
	l.state = stateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	// A pre-existing script (injected by a previous, since-abandoned load
	// attempt or by the page itself) must be polled, not re-injected.
	if !l.host.Injected() {
		l.host.Inject()
	}
	go l.poll(done)

	return l.wait(ctx, done)
}

func (l *Loader) wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// poll runs until the widget API reports ready. It deliberately has no
// deadline of its own: waiters bound their own patience through ctx, and a
// late-arriving script still completes the load for future callers.
func (l *Loader) poll(done chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		if l.host.Ready() {
			l.mu.Lock()
			l.state = stateLoaded
			l.mu.Unlock()
			close(done)
			return
		}
		<-ticker.C
	}
}
