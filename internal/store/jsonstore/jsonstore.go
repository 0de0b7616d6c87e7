package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/tada/internal/model"
)

// JSON-backed mirror. Single file, human-readable, portable.
// Writes go through a temp file + rename so a crash never leaves half a collection.

type Store struct {
	path string
}

// New stores the collection for key under dir as <key>.json.
func New(dir, key string) *Store {
	return &Store{path: filepath.Join(dir, key+".json")}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Read(ctx context.Context) (model.Collection, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	var todos model.Collection
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, false, fmt.Errorf("json unmarshal: %w", err)
	}
	if todos == nil {
		todos = model.Collection{}
	}
	return todos, true, nil
}

func (s *Store) Write(ctx context.Context, todos model.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if todos == nil {
		todos = model.Collection{}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
