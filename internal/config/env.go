package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// loadFromEnv overrides config from TADA_* environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_USER_ID"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TADA_USER_ID: %w", err)
		}
		cfg.UserID = n
	}
	if v := os.Getenv("TADA_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TADA_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("TADA_SEARCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_SEARCH_DEBOUNCE: %w", err)
		}
		cfg.SearchDebounce = d
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_MIRROR"); v != "" {
		cfg.Mirror.Backend = v
	}
	if v := os.Getenv("TADA_MIRROR_DIR"); v != "" {
		cfg.Mirror.Dir = v
	}
	if v := os.Getenv("TADA_SQLITE_PATH"); v != "" {
		cfg.Mirror.SQLitePath = v
	}
	if v := os.Getenv("TADA_REDIS_URL"); v != "" {
		cfg.Mirror.RedisURL = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
