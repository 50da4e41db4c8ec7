package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultOEmbedEndpoint = "https://publish.twitter.com/oembed"
	defaultScriptURL      = "https://platform.twitter.com/widgets.js"
)

// Widgets renders social posts through the platform's oEmbed endpoint.
// Requests are rate limited to stay polite toward the unauthenticated API.
type Widgets struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewWidgets creates the production widget API. If endpoint is empty, the
// platform's public oEmbed endpoint is used.
func NewWidgets(endpoint string, logger *slog.Logger) *Widgets {
	if endpoint == "" {
		endpoint = defaultOEmbedEndpoint
	}
	return &Widgets{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
	}
}

// CreateWidget fetches the rendered markup for one post. The options mirror
// the card presentation: light theme, no conversation thread, tracking off,
// and no script tag since the page carries the bootstrap once already.
func (w *Widgets) CreateWidget(ctx context.Context, postID string) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{}
	query.Set("url", "https://twitter.com/i/status/"+postID)
	query.Set("omit_script", "true")
	query.Set("hide_thread", "true")
	query.Set("theme", "light")
	query.Set("dnt", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	w.logger.Debug("oembed request", "post_id", postID)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("oembed error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.HTML == "" {
		return "", fmt.Errorf("empty widget markup for post %s", postID)
	}
	return result.HTML, nil
}

// PlatformHost is the production ScriptHost. Inject starts a single
// background fetch of the platform's widget bootstrap script; Ready reports
// whether that fetch has confirmed the platform is reachable. All cards in
// the process share one fetch.
type PlatformHost struct {
	scriptURL  string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	injected bool
	ready    atomic.Bool
}

// NewPlatformHost creates a host for the platform's bootstrap script. If
// scriptURL is empty, the platform's published location is used.
func NewPlatformHost(scriptURL string, logger *slog.Logger) *PlatformHost {
	if scriptURL == "" {
		scriptURL = defaultScriptURL
	}
	return &PlatformHost{
		scriptURL: scriptURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Injected reports whether the bootstrap fetch has been started.
func (h *PlatformHost) Injected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.injected
}

// Inject starts the bootstrap fetch. Subsequent calls are no-ops.
func (h *PlatformHost) Inject() {
	h.mu.Lock()
	if h.injected {
		h.mu.Unlock()
		return
	}
	h.injected = true
	h.mu.Unlock()

	go func() {
		resp, err := h.httpClient.Get(h.scriptURL)
		if err != nil {
			h.logger.Warn("widget script fetch failed", "url", h.scriptURL, "error", err)
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			h.logger.Warn("widget script fetch failed", "url", h.scriptURL, "status", resp.StatusCode)
			return
		}
		h.ready.Store(true)
	}()
}

// Ready reports whether the platform has been confirmed reachable.
func (h *PlatformHost) Ready() bool {
	return h.ready.Load()
}
