// Package store holds the persistent local mirror: the last known todo
// collection, kept under one fixed key and replaced whole on every write.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/redisstore"
	"github.com/idilsaglam/tada/internal/store/sqlitestore"
)

// Key is the single slot the collection is stored under.
const Key = "todos-cache"

// Mirror is a durable copy of the last known collection.
// Read reports ok=false when nothing has been stored yet.
type Mirror interface {
	Read(ctx context.Context) (todos model.Collection, ok bool, err error)
	Write(ctx context.Context, todos model.Collection) error
	Clear(ctx context.Context) error
	Close() error
}

var (
	_ Mirror = (*jsonstore.Store)(nil)
	_ Mirror = (*sqlitestore.Store)(nil)
	_ Mirror = (*redisstore.Store)(nil)
	_ Mirror = (*Memory)(nil)
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.MirrorConfig, logger *log.Logger) (Mirror, error) {
	var (
		m   Mirror
		err error
	)
	switch cfg.Backend {
	case config.BackendJSON, "":
		m = jsonstore.New(cfg.Dir, Key)
	case config.BackendSQLite:
		m, err = sqlitestore.Open(ctx, cfg.SQLitePathOrDefault(), Key)
	case config.BackendRedis:
		m, err = redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix, Key)
	case config.BackendMemory:
		m = NewMemory()
	default:
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s mirror: %w", cfg.Backend, err)
	}
	if logger != nil {
		logger.Debug("mirror opened", "backend", cfg.Backend)
	}
	return m, nil
}

// Memory is an in-process mirror. Nothing survives the process.
type Memory struct {
	mu    sync.Mutex
	todos model.Collection
	ok    bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Read(ctx context.Context) (model.Collection, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return nil, false, nil
	}
	out := m.todos.Clone()
	if out == nil {
		out = model.Collection{}
	}
	return out, true, nil
}

func (m *Memory) Write(ctx context.Context, todos model.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.todos = todos.Clone()
	m.ok = true
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.todos, m.ok = nil, false
	return nil
}

func (m *Memory) Close() error { return nil }
