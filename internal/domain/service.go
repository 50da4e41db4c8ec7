package domain

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// Service is the reconciliation layer. It owns the in-memory collection and
// the tag cache, and mediates every mutation by calling the gateway and then
// resynchronizing local state from the authoritative remote list. The view
// layer may read through Items and Tags but must route all mutations through
// the operations here.
type Service struct {
	gateway Gateway
	logger  *slog.Logger

	mu         sync.Mutex
	collection []ContentItem
	tagCache   []string
}

// NewService creates the reconciliation service around a gateway.
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger,
	}
}

// Load replaces the collection and tag cache with a fresh snapshot from the
// remote service. The two fetches run concurrently. A failure in either one
// is non-fatal: it is logged, both collection and tag cache are left empty,
// and the caller sees the empty state rather than an error.
func (s *Service) Load(ctx context.Context) {
	var (
		wg sync.WaitGroup

		items    []ContentItem
		itemsErr error
		tags     []string
		tagsErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemsErr = s.gateway.ListContent(ctx)
	}()
	go func() {
		defer wg.Done()
		tags, tagsErr = s.gateway.ListTags(ctx)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if itemsErr != nil || tagsErr != nil {
		// Single failure path: either fetch failing degrades to the empty
		// state for both.
		s.logger.Error("failed to load collection",
			"content_error", itemsErr,
			"tags_error", tagsErr,
		)
		s.collection = nil
		s.tagCache = nil
		return
	}

	s.collection = items
	s.tagCache = tags
}

// AddItem saves a new content item and reconciles the collection against
// the remote service's post-create listing. No synthetic item is ever
// inserted locally; on create failure the collection is untouched and the
// gateway's error is returned for the view to display.
func (s *Service) AddItem(ctx context.Context, title, rawURL string, kind Kind, tags []string) error {
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)
	if title == "" {
		return ValidationError("title is required")
	}
	if rawURL == "" {
		return ValidationError("url is required")
	}
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() {
		return ValidationError(fmt.Sprintf("invalid url %q", rawURL))
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}

	if err := s.gateway.CreateContent(ctx, title, rawURL, kind, strings.Join(tags, ",")); err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	// The service assigned the new item its identity; refetch rather than
	// guessing at it.
	items, err := s.gateway.ListContent(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("refetch after create failed", "error", err)
	} else {
		s.collection = items
	}

	// Union newly used tag names into the cache, existing names first, new
	// ones appended in the order supplied.
	known := make(map[string]struct{}, len(s.tagCache))
	for _, name := range s.tagCache {
		known[name] = struct{}{}
	}
	for _, name := range tags {
		if _, ok := known[name]; !ok {
			s.tagCache = append(s.tagCache, name)
			known[name] = struct{}{}
		}
	}
	return nil
}

// DeleteItem removes the item with the given ID. The remote delete is
// attempted once; whatever it reports, the item is removed from the local
// collection so the view never shows a stuck entry for an ambiguous remote
// result. A remote failure is logged, which is the only trace of the known
// local/remote desync this policy can cause.
func (s *Service) DeleteItem(ctx context.Context, id string) {
	if err := s.gateway.DeleteContent(ctx, id); err != nil {
		s.logger.Warn("remote delete failed, removing locally anyway",
			"id", id,
			"error", err,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.collection[:0]
	for _, item := range s.collection {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.collection = kept
}

// Items returns a copy of the collection in the remote service's order.
func (s *Service) Items() []ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ContentItem, len(s.collection))
	copy(items, s.collection)
	return items
}

// Tags returns a copy of the known tag names.
func (s *Service) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]string, len(s.tagCache))
	copy(tags, s.tagCache)
	return tags
}
