package brainapi

import (
	"encoding/json"

	"github.com/flamer65/second-frontend/internal/domain"
)

// contentRecord is the service's wire shape for a saved item.
type contentRecord struct {
	ID     string  `json:"_id"`
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Link   string  `json:"link"`
	Tags   tagList `json:"tags"`
	UserID string  `json:"userId"`
}

// tagRecord is the service's wire shape for a user-scoped tag.
type tagRecord struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

type createContentRequest struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Type  string `json:"type"`
	Tags  string `json:"tags"`
}

type shareRequest struct {
	Share bool `json:"share"`
}

type shareResponse struct {
	Hash string `json:"hash"`
}

type sharedCollectionResponse struct {
	Content []contentRecord `json:"content"`
}

// tagList normalizes the content record's tags field, which the service
// returns in two shapes: an array of raw names, or an array of tag objects
// carrying a name. A missing or non-array field decodes as empty.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	*t = nil

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		// Not a sequence; normalize to empty rather than failing the whole
		// record.
		return nil
	}

	names := make([]string, 0, len(elements))
	for _, el := range elements {
		var name string
		if err := json.Unmarshal(el, &name); err == nil {
			names = append(names, name)
			continue
		}
		var ref struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(el, &ref); err == nil {
			names = append(names, ref.Name)
		}
	}
	*t = names
	return nil
}

func toItems(records []contentRecord) []domain.ContentItem {
	items := make([]domain.ContentItem, len(records))
	for i, r := range records {
		items[i] = domain.ContentItem{
			ID:    r.ID,
			Title: r.Title,
			Kind:  domain.Kind(r.Type),
			URL:   r.Link,
			Tags:  r.Tags,
		}
	}
	return items
}
