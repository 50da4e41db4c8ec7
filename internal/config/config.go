package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	// APIBaseURL is the remote brain service's base URL including the
	// versioned path prefix.
	APIBaseURL string

	// Port is the web client's listen port.
	Port int

	// StateDir is the directory holding the session database.
	StateDir string

	// PublicURL is the origin used when composing shareable URLs.
	PublicURL string
}

// SessionPath returns the location of the session database.
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir, "session.db")
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	apiBaseURL := os.Getenv("BRAIN_API_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:3001/api/v1"
	}

	stateDir := os.Getenv("BRAIN_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state", "brainweb")
	}
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	publicURL := os.Getenv("BRAIN_PUBLIC_URL")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", port)
	}

	return &Config{
		APIBaseURL: apiBaseURL,
		Port:       port,
		StateDir:   stateDir,
		PublicURL:  publicURL,
	}, nil
}
