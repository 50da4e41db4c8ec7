package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flamer65/second-frontend/internal/brainapi"
	"github.com/flamer65/second-frontend/internal/config"
	"github.com/flamer65/second-frontend/internal/domain"
	"github.com/flamer65/second-frontend/internal/embed"
	"github.com/flamer65/second-frontend/internal/session"
	"github.com/flamer65/second-frontend/internal/webui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sessions, err := session.Open(cfg.SessionPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	gateway := brainapi.NewClient(cfg.APIBaseURL, sessions)
	brain := domain.NewService(gateway, logger)

	widgets := embed.NewWidgets("", logger)
	host := embed.NewPlatformHost("", logger)
	loader := embed.NewLoader(host, 0)
	embeds := embed.NewManager(loader, widgets, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the collection when a previous session survives the restart.
	if sessions.Authenticated(ctx) {
		brain.Load(ctx)
		logger.Info("restored session", "items", len(brain.Items()))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := webui.NewServer(cfg, brain, gateway, sessions, embeds, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("web server exited with error", "error", err)
		}
	}()

	logger.Info("web client started", "port", cfg.Port, "api", cfg.APIBaseURL)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	return nil
}
