package embed

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWidgets records which post IDs had widgets created.
type fakeWidgets struct {
	calls atomic.Int32
	err   error
}

func (f *fakeWidgets) CreateWidget(_ context.Context, postID string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "<blockquote>" + postID + "</blockquote>", nil
}

func testManager(host ScriptHost, widgets WidgetAPI) *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(NewLoader(host, time.Millisecond), widgets, logger)
}

func readyHost() *fakeHost {
	h := &fakeHost{}
	h.ready.Store(true)
	return h
}

func TestAttachRendersOneWidget(t *testing.T) {
	widgets := &fakeWidgets{}
	mgr := testManager(readyHost(), widgets)
	mount := NewMount()

	require.NoError(t, mgr.Attach(context.Background(), mount, "42"))

	assert.Equal(t, "<blockquote>42</blockquote>", mount.HTML())
	assert.Equal(t, int32(1), widgets.calls.Load())
	assert.NotEmpty(t, mount.ID())
}

func TestDetachClearsMount(t *testing.T) {
	widgets := &fakeWidgets{}
	mgr := testManager(readyHost(), widgets)
	mount := NewMount()

	require.NoError(t, mgr.Attach(context.Background(), mount, "42"))
	mgr.Detach(mount)

	assert.Empty(t, mount.HTML())
}

func TestDetachBeforeScriptLoadDiscardsWidget(t *testing.T) {
	// The script is still loading when the card unmounts; once the load
	// finishes, the detached container must not receive the widget.
	host := &fakeHost{} // not ready yet
	widgets := &fakeWidgets{}
	mgr := testManager(host, widgets)
	mount := NewMount()

	done := make(chan error, 1)
	go func() {
		done <- mgr.Attach(context.Background(), mount, "42")
	}()

	time.Sleep(3 * time.Millisecond)
	mgr.Detach(mount)
	host.ready.Store(true)

	require.NoError(t, <-done)
	assert.Empty(t, mount.HTML(), "detached mount must stay empty")
	assert.Equal(t, int32(0), widgets.calls.Load(), "no widget creation for a dead mount")
}

func TestRapidReattachNeverStacksWidgets(t *testing.T) {
	host := &fakeHost{}
	widgets := &fakeWidgets{}
	mgr := testManager(host, widgets)
	mount := NewMount()

	first := make(chan error, 1)
	go func() {
		first <- mgr.Attach(context.Background(), mount, "1")
	}()
	time.Sleep(2 * time.Millisecond)

	// Re-target the same mount while the first attach is still waiting on
	// the script load.
	host.ready.Store(true)
	require.NoError(t, mgr.Attach(context.Background(), mount, "2"))
	require.NoError(t, <-first)

	// Only the latest attachment occupies the container.
	assert.Equal(t, "<blockquote>2</blockquote>", mount.HTML())
}

func TestAttachPropagatesWidgetFailure(t *testing.T) {
	widgets := &fakeWidgets{err: context.DeadlineExceeded}
	mgr := testManager(readyHost(), widgets)
	mount := NewMount()

	err := mgr.Attach(context.Background(), mount, "42")
	require.Error(t, err)
	assert.Empty(t, mount.HTML())
}

func TestMountIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewMount().ID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate mount ID %q", id)
		}
		seen[id] = struct{}{}
	}
}
