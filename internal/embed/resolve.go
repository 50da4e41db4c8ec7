// Package embed resolves external content identifiers from saved URLs and
// manages the third-party widget lifecycle for rendered cards.
package embed

import (
	"regexp"

	"github.com/flamer65/second-frontend/internal/domain"
)

// Provider names the third-party platform a resolved embed renders through.
type Provider string

const (
	ProviderVideo  Provider = "youtube"
	ProviderSocial Provider = "twitter"
)

// Embed is a resolved external identifier for one content item.
type Embed struct {
	Provider Provider
	ID       string
}

var (
	// Permissive video URL shapes: short-link, /v/, /u/<n>/, /embed/ and
	// watch-query forms. The captured segment must be exactly 11 characters
	// to count as a video ID.
	videoPattern = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\w/|/embed/|watch\?v=|&v=)([^#&?/]*)`)

	// <handle>/status/<numeric-id> under either accepted domain.
	socialPattern = regexp.MustCompile(`(?:twitter|x)\.com/\w+/status/(\d+)`)
)

// VideoID extracts the 11-character video identifier from a video URL.
func VideoID(rawURL string) (string, bool) {
	m := videoPattern.FindStringSubmatch(rawURL)
	if m == nil || len(m[1]) != 11 {
		return "", false
	}
	return m[1], true
}

// SocialPostID extracts the numeric post identifier from a social post URL.
func SocialPostID(rawURL string) (string, bool) {
	m := socialPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolve maps a content item to its embed identifier. A false return means
// the item cannot be embedded and the card should fall back to rendering
// the raw URL as a plain link.
func Resolve(item domain.ContentItem) (Embed, bool) {
	switch item.Kind {
	case domain.KindVideo:
		if id, ok := VideoID(item.URL); ok {
			return Embed{Provider: ProviderVideo, ID: id}, true
		}
	case domain.KindSocialPost:
		if id, ok := SocialPostID(item.URL); ok {
			return Embed{Provider: ProviderSocial, ID: id}, true
		}
	}
	return Embed{}, false
}
