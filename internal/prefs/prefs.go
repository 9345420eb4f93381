// Package prefs handles SQLite persistence of runtime preferences.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/ikiflow/internal/apperrors"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Well-known keys.
const (
	KeyLastFocus = "quickstart.last_focus"
	KeyLastBreak = "quickstart.last_break"

	cooldownPrefix = "trigger.cooldown."
)

// Store wraps a key-value table of preferences.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the stored value for key or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: pref %s", apperrors.ErrNotFound, key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set upserts key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// IntOr returns the integer stored at key, or fallback when missing or malformed.
func (s *Store) IntOr(ctx context.Context, key string, fallback int) int {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// SetInt stores an integer value.
func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.Set(ctx, key, strconv.Itoa(value))
}

// LoadCooldowns returns the last trigger instant per app.
func (s *Store) LoadCooldowns(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs WHERE key LIKE ?`, cooldownPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]time.Time{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			continue
		}
		result[key[len(cooldownPrefix):]] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveCooldown records when app last triggered.
func (s *Store) SaveCooldown(ctx context.Context, app string, at time.Time) error {
	return s.Set(ctx, cooldownPrefix+app, at.Format(time.RFC3339Nano))
}
