package webui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamer65/second-frontend/internal/brainapi"
	"github.com/flamer65/second-frontend/internal/config"
	"github.com/flamer65/second-frontend/internal/domain"
	"github.com/flamer65/second-frontend/internal/embed"
	"github.com/flamer65/second-frontend/internal/session"
)

// fakeRemote emulates the brain service's HTTP contract.
type fakeRemote struct {
	mu          sync.Mutex
	records     []map[string]any
	tags        []string
	deleteFails bool
	deleted     []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: []map[string]any{
			{
				"_id":   "c1",
				"title": "Never Gonna Give You Up",
				"type":  "video",
				"link":  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				"tags":  []string{"music"},
			},
			{
				"_id":   "c2",
				"title": "Launch thread",
				"type":  "social-post",
				"link":  "https://twitter.com/someone/status/1234567890",
				"tags":  []map[string]string{{"_id": "t1", "name": "go"}},
			},
			{
				"_id":   "c3",
				"title": "Reading notes",
				"type":  "social-post",
				"link":  "https://example.com/notes",
				"tags":  []string{},
			},
		},
		tags: []string{"music", "go"},
	}
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/signin":
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "alice" || creds["password"] != "hunter2" {
			http.Error(w, "Incorrect credentials", http.StatusForbidden)
			return
		}
		io.WriteString(w, "token-alice")
	case r.Method == http.MethodPost && r.URL.Path == "/signup":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && r.URL.Path == "/content":
		if r.Header.Get("Authorization") != "Bearer token-alice" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(f.records)
	case r.Method == http.MethodGet && r.URL.Path == "/tags":
		records := make([]map[string]string, len(f.tags))
		for i, name := range f.tags {
			records[i] = map[string]string{"name": name}
		}
		json.NewEncoder(w).Encode(records)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/content/"):
		if f.deleteFails {
			http.Error(w, "delete failed", http.StatusInternalServerError)
			return
		}
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/content/"))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && r.URL.Path == "/brain/share":
		json.NewEncoder(w).Encode(map[string]string{"hash": "abc123"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/brain/"):
		json.NewEncoder(w).Encode(map[string]any{"content": f.records})
	default:
		http.NotFound(w, r)
	}
}

type readyScriptHost struct{ injected bool }

func (h *readyScriptHost) Injected() bool { return h.injected }
func (h *readyScriptHost) Inject()        { h.injected = true }
func (h *readyScriptHost) Ready() bool    { return h.injected }

type staticWidgets struct{}

func (staticWidgets) CreateWidget(_ context.Context, postID string) (string, error) {
	return "<blockquote>post " + postID + "</blockquote>", nil
}

type harness struct {
	remote   *fakeRemote
	sessions *session.Store
	brain    *domain.Service
	handler  http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	remote := newFakeRemote()
	api := httptest.NewServer(remote)
	t.Cleanup(api.Close)

	sessions, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := brainapi.NewClient(api.URL, sessions)
	brain := domain.NewService(gateway, logger)
	embeds := embed.NewManager(
		embed.NewLoader(&readyScriptHost{}, time.Millisecond),
		staticWidgets{},
		logger,
	)
	cfg := &config.Config{
		APIBaseURL: api.URL,
		Port:       3000,
		PublicURL:  "http://localhost:3000",
	}
	srv := NewServer(cfg, brain, gateway, sessions, embeds, logger)

	return &harness{
		remote:   remote,
		sessions: sessions,
		brain:    brain,
		handler:  srv.Handler(),
	}
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (h *harness) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	rec := h.postForm("/signin", url.Values{
		"username": {"alice"},
		"password": {"hunter2"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAnonymousDashboardRedirectsToSignIn(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestSignInPersistsCredentialAndLoadsCollection(t *testing.T) {
	h := newHarness(t)

	h.signIn(t)

	token, err := h.sessions.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-alice", token)
	assert.True(t, h.sessions.Authenticated(context.Background()))

	rec := h.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Never Gonna Give You Up")
	assert.Contains(t, body, "Launch thread")
	assert.Contains(t, body, "Reading notes")
	// The video item embeds its player, the social post its widget markup.
	assert.Contains(t, body, "youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, body, "post 1234567890")
	// The plain link item falls back to its URL.
	assert.Contains(t, body, "https://example.com/notes")
}

func TestSignInFailureShowsServiceMessage(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/signin", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect credentials")
	assert.False(t, h.sessions.Authenticated(context.Background()))
}

func TestDashboardFilterByKind(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	rec := h.get("/?filter=video")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Never Gonna Give You Up")
	assert.NotContains(t, body, "Launch thread")
	assert.NotContains(t, body, "Reading notes")
}

func TestDeleteRemovesLocallyWhenRemoteFails(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.get("/") // warm the collection

	h.remote.mu.Lock()
	h.remote.deleteFails = true
	h.remote.mu.Unlock()

	rec := h.postForm("/content/c1/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	for _, item := range h.brain.Items() {
		assert.NotEqual(t, "c1", item.ID, "item must be removed locally despite the remote failure")
	}
}

func TestDeleteCallsRemote(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.get("/")

	rec := h.postForm("/content/c2/delete", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	h.remote.mu.Lock()
	defer h.remote.mu.Unlock()
	assert.Equal(t, []string{"c2"}, h.remote.deleted)
}

func TestAddContentValidationErrorRedirectsWithMessage(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	rec := h.postForm("/content", url.Values{
		"title": {""},
		"url":   {"https://example.com"},
		"kind":  {"video"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, loc.Query().Get("add_err"))
}

func TestEnableSharingRedirectsWithPublicURL(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	rec := h.postForm("/share", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/shared/abc123", loc.Query().Get("share_url"))
}

func TestSharedPageRendersWithoutAuth(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/shared/abc123")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Never Gonna Give You Up")
	assert.Contains(t, body, "post 1234567890")
}

func TestSignOutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	require.True(t, h.sessions.Authenticated(context.Background()))

	rec := h.get("/signout")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.False(t, h.sessions.Authenticated(context.Background()))
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseTagInput(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"go, Productivity", []string{"go", "productivity"}},
		{"Go go GO", []string{"go"}},
		{"  c++  ", []string{"c"}},
		{",, ,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseTagInput(tt.input)
		if len(got) == 0 {
			got = nil
		}
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
