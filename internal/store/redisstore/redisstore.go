// Package redisstore keeps the todo mirror under one Redis key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idilsaglam/tada/internal/model"
)

type Store struct {
	client *redis.Client
	key    string
}

// Open connects to redisURL and checks the connection before returning.
func Open(ctx context.Context, redisURL, prefix, key string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, prefix, key), nil
}

// NewWithClient wraps an existing client. The stored key is prefix+key.
func NewWithClient(client *redis.Client, prefix, key string) *Store {
	return &Store{client: client, key: prefix + key}
}

func (s *Store) Key() string { return s.key }

func (s *Store) Read(ctx context.Context) (model.Collection, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var todos model.Collection
	if err := json.Unmarshal(raw, &todos); err != nil {
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
	// No expiration: the mirror lives until cleared.
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }
