package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/flamer65/second-frontend/internal/brainapi"
	"github.com/flamer65/second-frontend/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		api       string
		username  string
		password  string
		publicURL string
		off       bool
	)

	flag.StringVar(&api, "api", envOrDefault("BRAIN_API_URL", "http://localhost:3001/api/v1"), "brain service base URL")
	flag.StringVar(&username, "username", envOrDefault("BRAIN_USERNAME", ""), "account username")
	flag.StringVar(&password, "password", envOrDefault("BRAIN_PASSWORD", ""), "account password")
	flag.StringVar(&publicURL, "public-url", envOrDefault("BRAIN_PUBLIC_URL", "http://localhost:3000"), "web client origin used in the printed share link")
	flag.BoolVar(&off, "off", false, "disable sharing instead of enabling it")
	flag.Parse()

	if username == "" || password == "" {
		return fmt.Errorf("--username and --password are required (or set BRAIN_USERNAME and BRAIN_PASSWORD)")
	}

	ctx := context.Background()
	client := brainapi.NewClient(api, session.NewMemory())

	fmt.Printf("Signing in as %s...\n", username)
	if err := client.SignIn(ctx, username, password); err != nil {
		return err
	}

	if off {
		if err := client.DisableSharing(ctx); err != nil {
			return err
		}
		fmt.Println("Sharing disabled.")
		return nil
	}

	hash, err := client.EnableSharing(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Sharing enabled: %s/shared/%s\n", publicURL, hash)
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
