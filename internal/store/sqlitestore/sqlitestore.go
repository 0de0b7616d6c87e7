// Package sqlitestore keeps the todo mirror in a single-row SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/idilsaglam/tada/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	key string
}

// Open creates (or reuses) the database at path and prepares the mirror table.
func Open(ctx context.Context, path, key string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL lets a CLI invocation read while the TUI writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS mirror(
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, key: key}, nil
}

func (s *Store) Read(ctx context.Context) (model.Collection, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM mirror WHERE k = ?`, s.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select: %w", err)
	}
	var todos model.Collection
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		return nil, false, fmt.Errorf("json unmarshal: %w", err)
	}
	if todos == nil {
		todos = model.Collection{}
	}
	return todos, true, nil
}

func (s *Store) Write(ctx context.Context, todos model.Collection) error {
	if todos == nil {
		todos = model.Collection{}
	}
	raw, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO mirror(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		s.key, string(raw), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mirror WHERE k = ?`, s.key); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
