package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports invalid user input to an operation. The view
// layer shows these inline; anything else is a gateway failure.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Kind classifies a content item's external source.
type Kind string

const (
	// KindSocialPost is a short-form social media post.
	KindSocialPost Kind = "social-post"

	// KindVideo is a link to a video platform.
	KindVideo Kind = "video"
)

// FilterAll is the kind-filter sentinel that matches every item.
const FilterAll = "all"

// ParseKind validates a kind string from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSocialPost, KindVideo:
		return Kind(s), nil
	}
	return "", ValidationError(fmt.Sprintf("unknown content kind %q", s))
}

// ContentItem is one saved external link plus its metadata. Items are only
// ever created from the remote service's responses; the client never
// synthesizes one locally.
type ContentItem struct {
	// ID is the opaque identifier assigned by the remote service.
	ID string

	// Title is the user-supplied display string.
	Title string

	// Kind is fixed at creation and never changes.
	Kind Kind

	// URL is the external source URL as submitted.
	URL string

	// Tags holds the item's tag names. Order is not significant.
	Tags []string
}

// FilterByKind returns items unchanged when kind is FilterAll, otherwise a
// new slice containing exactly the items of that kind in their original
// relative order. The input is never mutated.
func FilterByKind(items []ContentItem, kind string) []ContentItem {
	if kind == FilterAll {
		return items
	}
	filtered := make([]ContentItem, 0, len(items))
	for _, item := range items {
		if item.Kind == Kind(kind) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// NormalizeTagName converts quick-add tag input to its canonical form:
// lowercased with everything but ASCII letters and digits stripped. Tag
// names returned by the remote service are used verbatim and must not be
// passed through this.
func NormalizeTagName(input string) string {
	lowered := strings.ToLower(strings.TrimSpace(input))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
