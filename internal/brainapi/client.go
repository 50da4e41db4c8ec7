// Package brainapi is the typed HTTP client for the remote brain service.
package brainapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flamer65/second-frontend/internal/domain"
)

const defaultBaseURL = "http://localhost:3001/api/v1"

// APIError is a non-success response from the service. Message carries the
// service's response body text when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error (status %d)", e.Status)
	}
	return fmt.Sprintf("service error (status %d): %s", e.Status, e.Message)
}

// Client implements domain.Gateway over the service's HTTP/JSON contract.
// The session credential is read from the token store on every call and
// attached as a bearer header when present.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.TokenStore
}

// NewClient creates a gateway client. If baseURL is empty, it defaults to
// the local development service.
func NewClient(baseURL string, tokens domain.TokenStore) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	if _, err := c.do(ctx, http.MethodPost, "/signup", body, false); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignIn authenticates and persists the plain-text credential returned by
// the service into the token store.
func (c *Client) SignIn(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	resp, err := c.do(ctx, http.MethodPost, "/signin", body, false)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	token := strings.TrimSpace(string(resp))
	if token == "" {
		return fmt.Errorf("sign in: empty credential in response")
	}
	if err := c.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// ListContent retrieves the full collection.
func (c *Client) ListContent(ctx context.Context) ([]domain.ContentItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/content", nil, true)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	var records []contentRecord
	if err := json.Unmarshal(resp, &records); err != nil {
		return nil, fmt.Errorf("list content: decode response: %w", err)
	}
	return toItems(records), nil
}

// CreateContent saves a new item. Tags must already be comma-joined.
func (c *Client) CreateContent(ctx context.Context, title, url string, kind domain.Kind, tags string) error {
	body := createContentRequest{
		Title: title,
		Link:  url,
		Type:  string(kind),
		Tags:  tags,
	}
	if _, err := c.do(ctx, http.MethodPost, "/content", body, true); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// DeleteContent removes an item by ID.
func (c *Client) DeleteContent(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/content/"+id, nil, true); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// ListTags retrieves the names of all tags known for the signed-in user.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/tags", nil, true)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	var records []tagRecord
	if err := json.Unmarshal(resp, &records); err != nil {
		return nil, fmt.Errorf("list tags: decode response: %w", err)
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names, nil
}

// EnableSharing turns on the public view and returns the share token.
func (c *Client) EnableSharing(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/brain/share", shareRequest{Share: true}, true)
	if err != nil {
		return "", fmt.Errorf("enable sharing: %w", err)
	}

	var result shareResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("enable sharing: decode response: %w", err)
	}
	if result.Hash == "" {
		return "", fmt.Errorf("enable sharing: no share token in response")
	}
	return result.Hash, nil
}

// DisableSharing turns off the public view.
func (c *Client) DisableSharing(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/brain/share", shareRequest{Share: false}, true); err != nil {
		return fmt.Errorf("disable sharing: %w", err)
	}
	return nil
}

// SharedCollection fetches a shared collection by token, unauthenticated.
func (c *Client) SharedCollection(ctx context.Context, token string) ([]domain.ContentItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/brain/"+token, nil, false)
	if err != nil {
		return nil, fmt.Errorf("shared collection: %w", err)
	}

	var result sharedCollectionResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("shared collection: decode response: %w", err)
	}
	return toItems(result.Content), nil
}

// do executes a single request and returns the raw response body. Transport
// failures and non-2xx statuses both come back as errors; the latter as an
// *APIError carrying the service's message.
func (c *Client) do(ctx context.Context, method, path string, body any, withAuth bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}
