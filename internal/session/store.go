// Package session persists the single authentication credential across
// restarts.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	token      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Store implements domain.TokenStore on a local SQLite database. Exactly one
// credential row exists at a time; its absence means unauthenticated.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at the given path.
// The caller should call Close when the store is no longer needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the stored credential, or an empty string when no session
// exists.
func (s *Store) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM session WHERE id = 1`,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return token, err
}

// Save upserts the credential.
func (s *Store) Save(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		token, time.Now().UTC(),
	)
	return err
}

// Clear removes the credential; the session ends.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}

// Authenticated reports whether a credential is present. Read failures
// count as unauthenticated.
func (s *Store) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}
