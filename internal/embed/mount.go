package embed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// WidgetAPI creates widget renderings for resolved post identifiers. The
// provider's internals are out of scope; implementations return the markup
// to place in a card's container.
type WidgetAPI interface {
	CreateWidget(ctx context.Context, postID string) (string, error)
}

// Mount is one card's render slot. Each rendered card owns exactly one; at
// most one widget occupies it at a time.
type Mount struct {
	id string

	mu   sync.Mutex
	gen  uint64
	html string
}

// NewMount creates an empty mount with a unique container ID.
func NewMount() *Mount {
	id, err := gonanoid.New()
	if err != nil {
		// Entropy exhaustion; a process-local fallback keeps cards usable.
		id = fmt.Sprintf("mount-%p", &id)
	}
	return &Mount{id: "card-" + id}
}

// ID is the container identifier the view renders the slot under.
func (m *Mount) ID() string {
	return m.id
}

// HTML returns the widget markup currently occupying the mount, empty when
// cleared or never attached.
func (m *Mount) HTML() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.html
}

// begin invalidates any in-flight attachment, clears the container, and
// returns the new generation.
func (m *Mount) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.html = ""
	return m.gen
}

// alive reports whether gen is still the mount's current generation.
func (m *Mount) alive(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == gen
}

// deliver installs the widget markup if gen is still current. A stale
// generation means the mount was detached or re-targeted while the widget
// was being created, and the markup is discarded.
func (m *Mount) deliver(gen uint64, html string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	m.html = html
	return true
}

// Manager runs the per-card widget lifecycle over the shared script loader.
type Manager struct {
	loader  *Loader
	widgets WidgetAPI
	logger  *slog.Logger
}

// NewManager creates a manager. All mounts share the loader's single script
// load.
func NewManager(loader *Loader, widgets WidgetAPI, logger *slog.Logger) *Manager {
	return &Manager{
		loader:  loader,
		widgets: widgets,
		logger:  logger,
	}
}

// Attach renders the widget for postID into the mount: clear, ensure the
// script is loaded, then create exactly one widget if the mount is still
// current. Every resumption point re-checks the generation captured at the
// start, so a mount detached mid-flight never receives a stale widget.
func (g *Manager) Attach(ctx context.Context, m *Mount, postID string) error {
	gen := m.begin()

	if err := g.loader.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure widget script: %w", err)
	}
	if !m.alive(gen) {
		return nil
	}

	html, err := g.widgets.CreateWidget(ctx, postID)
	if err != nil {
		g.logger.Warn("widget creation failed", "post_id", postID, "error", err)
		return fmt.Errorf("create widget: %w", err)
	}

	m.deliver(gen, html)
	return nil
}

// Detach clears the mount and invalidates any in-flight attachment.
func (g *Manager) Detach(m *Mount) {
	m.begin()
}
