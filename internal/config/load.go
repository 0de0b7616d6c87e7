package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Options points Load at its sources. Zero values mean "use the usual place".
type Options struct {
	// UserConfigDir holds tada/config.toml. Defaults to os.UserConfigDir().
	UserConfigDir string
	// WorkDir is searched for tada.toml, .tada.toml and .env. Defaults to the cwd.
	WorkDir string
	// ConfigFile is an explicit file that must exist (--config).
	ConfigFile string
	// Flags are applied last; only flags the user actually set override.
	Flags *pflag.FlagSet
}

// Load resolves configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (<user config dir>/tada/config.toml)
// 3. Project config file (tada.toml or .tada.toml in the work dir)
// 4. Explicit --config file
// 5. .env in the work dir (never overrides variables already set)
// 6. TADA_* environment variables
// 7. CLI flags
func Load(opts Options) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	if p := userConfigFile(opts.UserConfigDir); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := projectConfigFile(workDir); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}
	if opts.ConfigFile != "" {
		if err := loadConfigFile(cfg, opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := godotenv.Load(filepath.Join(workDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		if err := applyFlags(cfg, opts.Flags); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	cfg.Mirror.Dir = expandPath(cfg.Mirror.Dir)
	cfg.Mirror.SQLitePath = expandPath(cfg.Mirror.SQLitePath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func userConfigFile(dir string) string {
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		dir = d
	}
	p := filepath.Join(dir, "tada", "config.toml")
	if fileExists(p) {
		return p
	}
	return ""
}

func projectConfigFile(workDir string) string {
	for _, name := range []string{"tada.toml", ".tada.toml"} {
		p := filepath.Join(workDir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func expandPath(p string) string {
	if p == "~" || (len(p) > 1 && p[:2] == "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
