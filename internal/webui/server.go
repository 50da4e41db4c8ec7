// Package webui is the presentation layer: server-rendered pages over the
// reconciliation service and the embed lifecycle manager.
package webui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flamer65/second-frontend/internal/brainapi"
	"github.com/flamer65/second-frontend/internal/config"
	"github.com/flamer65/second-frontend/internal/domain"
	"github.com/flamer65/second-frontend/internal/embed"
	"github.com/flamer65/second-frontend/internal/session"
)

// widgetTimeout bounds how long one card waits for its widget before the
// page falls back to a plain link.
const widgetTimeout = 5 * time.Second

// Server renders the web client's pages.
type Server struct {
	cfg      *config.Config
	brain    *domain.Service
	gateway  domain.Gateway
	sessions *session.Store
	embeds   *embed.Manager
	logger   *slog.Logger

	tpl        *template.Template
	httpServer *http.Server
}

// NewServer wires the view layer together.
func NewServer(cfg *config.Config, brain *domain.Service, gateway domain.Gateway, sessions *session.Store, embeds *embed.Manager, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		brain:    brain,
		gateway:  gateway,
		sessions: sessions,
		embeds:   embeds,
		logger:   logger,
		tpl:      template.Must(template.New("pages").Parse(pagesTpl)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /signin", s.handleSignInPage)
	mux.HandleFunc("POST /signin", s.handleSignIn)
	mux.HandleFunc("GET /signup", s.handleSignUpPage)
	mux.HandleFunc("POST /signup", s.handleSignUp)
	mux.HandleFunc("GET /signout", s.handleSignOut)
	mux.HandleFunc("POST /content", s.handleAddContent)
	mux.HandleFunc("POST /content/{id}/delete", s.handleDeleteContent)
	mux.HandleFunc("POST /share", s.handleEnableSharing)
	mux.HandleFunc("POST /share/off", s.handleDisableSharing)
	mux.HandleFunc("GET /shared/{token}", s.handleShared)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/", s.handleFallback)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting web client", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// cardView is one rendered card. Exactly one of VideoID and Widget is set
// for embeddable items; when neither is, the raw URL renders as a link.
type cardView struct {
	ID      string
	Title   string
	Kind    domain.Kind
	URL     string
	Tags    []string
	VideoID string
	MountID string
	Widget  template.HTML
}

type dashboardPage struct {
	Filter     string
	Items      []cardView
	Tags       []string
	ShareURL   string
	ShareErr   bool
	AddErr     string
	HasWidgets bool
}

type sharedPage struct {
	Token      string
	Items      []cardView
	HasWidgets bool
}

type authPage struct {
	Error   string
	Created bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.sessions.Authenticated(ctx) {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	s.brain.Load(ctx)

	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = domain.FilterAll
	}
	items := domain.FilterByKind(s.brain.Items(), filter)

	page := dashboardPage{
		Filter:   filter,
		Items:    s.buildCards(ctx, items),
		Tags:     s.brain.Tags(),
		ShareURL: r.URL.Query().Get("share_url"),
		ShareErr: r.URL.Query().Get("share_err") != "",
		AddErr:   r.URL.Query().Get("add_err"),
	}
	page.HasWidgets = hasWidgets(page.Items)
	s.render(w, "dashboard", page)
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, "signin", authPage{Created: r.URL.Query().Get("created") != ""})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	err := s.gateway.SignIn(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		s.logger.Warn("sign in failed", "error", err)
		s.render(w, "signin", authPage{Error: failureMessage(err)})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, "signup", authPage{})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	err := s.gateway.SignUp(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		s.logger.Warn("sign up failed", "error", err)
		s.render(w, "signup", authPage{Error: failureMessage(err)})
		return
	}
	http.Redirect(w, r, "/signin?created=1", http.StatusFound)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context()); err != nil {
		s.logger.Error("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/signin", http.StatusFound)
}

func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.sessions.Authenticated(ctx) {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	kind, err := domain.ParseKind(r.FormValue("kind"))
	if err == nil {
		err = s.brain.AddItem(ctx, r.FormValue("title"), r.FormValue("url"), kind, parseTagInput(r.FormValue("tags")))
	}
	if err != nil {
		var verr domain.ValidationError
		msg := failureMessage(err)
		if errors.As(err, &verr) {
			msg = string(verr)
		}
		http.Redirect(w, r, "/?add_err="+url.QueryEscape(msg), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.sessions.Authenticated(ctx) {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	s.brain.DeleteItem(ctx, r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEnableSharing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.sessions.Authenticated(ctx) {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	hash, err := s.gateway.EnableSharing(ctx)
	if err != nil {
		s.logger.Warn("enable sharing failed", "error", err)
		http.Redirect(w, r, "/?share_err=1", http.StatusFound)
		return
	}
	shareURL := s.cfg.PublicURL + "/shared/" + hash
	http.Redirect(w, r, "/?share_url="+url.QueryEscape(shareURL), http.StatusFound)
}

func (s *Server) handleDisableSharing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.sessions.Authenticated(ctx) {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}
	if err := s.gateway.DisableSharing(ctx); err != nil {
		s.logger.Warn("disable sharing failed", "error", err)
		http.Redirect(w, r, "/?share_err=1", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	items, err := s.gateway.SharedCollection(ctx, token)
	if err != nil {
		// Degrade to an empty shared view, same as a failed collection load.
		s.logger.Warn("shared collection fetch failed", "token", token, "error", err)
		items = nil
	}

	page := sharedPage{
		Token: token,
		Items: s.buildCards(ctx, items),
	}
	page.HasWidgets = hasWidgets(page.Items)
	s.render(w, "shared", page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Any unmatched path goes back to the dashboard.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// buildCards resolves each item's embed and renders widgets for social
// posts. One mount per card; the mount is detached once its markup is
// lifted into the page, so no widget outlives its render.
func (s *Server) buildCards(ctx context.Context, items []domain.ContentItem) []cardView {
	cards := make([]cardView, len(items))
	for i, item := range items {
		card := cardView{
			ID:    item.ID,
			Title: item.Title,
			Kind:  item.Kind,
			URL:   item.URL,
			Tags:  item.Tags,
		}

		if e, ok := embed.Resolve(item); ok {
			switch e.Provider {
			case embed.ProviderVideo:
				card.VideoID = e.ID
			case embed.ProviderSocial:
				mount := embed.NewMount()
				card.MountID = mount.ID()
				widgetCtx, cancel := context.WithTimeout(ctx, widgetTimeout)
				err := s.embeds.Attach(widgetCtx, mount, e.ID)
				cancel()
				if err != nil {
					s.logger.Warn("embed unavailable, falling back to link",
						"id", item.ID,
						"error", err,
					)
				} else {
					card.Widget = template.HTML(mount.HTML())
				}
				s.embeds.Detach(mount)
			}
		}
		cards[i] = card
	}
	return cards
}

func hasWidgets(cards []cardView) bool {
	for _, c := range cards {
		if c.Widget != "" {
			return true
		}
	}
	return false
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed", "page", name, "error", err)
	}
}

// parseTagInput splits quick-add input on commas and whitespace and
// normalizes each name, dropping empties and duplicates.
func parseTagInput(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]struct{}, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		name := domain.NormalizeTagName(f)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}

// failureMessage maps a gateway error to its user-visible text: the
// service's own message when it sent one, a generic network error otherwise.
func failureMessage(err error) string {
	var apiErr *brainapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Network error"
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
