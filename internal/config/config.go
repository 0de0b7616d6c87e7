// Package config resolves tada's settings from defaults, TOML files, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/ui"
)

const (
	DefaultBaseURL        = "https://jsonplaceholder.typicode.com"
	DefaultPageSize       = 10
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultTheme          = "classic"
	DefaultBackend        = BackendJSON
	DefaultLogLevel       = "info"
	DefaultRedisPrefix    = "tada:"
)

// Mirror backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	BaseURL        string        `toml:"base_url"`
	UserID         int           `toml:"user_id"`
	PageSize       int           `toml:"page_size"`
	SearchDebounce time.Duration `toml:"search_debounce"`
	Theme          string        `toml:"theme"`
	Mirror         MirrorConfig  `toml:"mirror"`
	Log            LogConfig     `toml:"log"`
}

type MirrorConfig struct {
	Backend     string `toml:"backend"`
	Dir         string `toml:"dir"`
	SQLitePath  string `toml:"sqlite_path"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.UserID = 1
	cfg.PageSize = DefaultPageSize
	cfg.SearchDebounce = DefaultSearchDebounce
	cfg.Theme = DefaultTheme
	cfg.Mirror.Backend = DefaultBackend
	cfg.Mirror.Dir = defaultDataDir()
	cfg.Mirror.RedisPrefix = DefaultRedisPrefix
	cfg.Log.Level = DefaultLogLevel
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tada")
	}
	return ".tada"
}

// SQLitePathOrDefault falls back to mirror.sqlite inside the mirror dir.
func (m MirrorConfig) SQLitePathOrDefault() string {
	if m.SQLitePath != "" {
		return m.SQLitePath
	}
	return filepath.Join(m.Dir, "mirror.sqlite")
}

// Validate rejects settings the rest of the program cannot work with.
func (cfg *Config) Validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", cfg.BaseURL)
	}
	if cfg.UserID <= 0 {
		return fmt.Errorf("user_id must be positive, got %d", cfg.UserID)
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if cfg.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must not be negative, got %s", cfg.SearchDebounce)
	}
	switch cfg.Mirror.Backend {
	case BackendJSON, BackendSQLite, BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.Mirror.RedisURL) == "" {
			return fmt.Errorf("mirror.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown mirror backend %q (want json|sqlite|redis|memory)", cfg.Mirror.Backend)
	}
	if !slices.Contains(ui.Themes(), strings.ToLower(strings.TrimSpace(cfg.Theme))) {
		return fmt.Errorf("unknown theme %q (want %s)", cfg.Theme, strings.Join(ui.Themes(), "|"))
	}
	return nil
}
