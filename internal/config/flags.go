package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by every subcommand.
const (
	FlagConfig    = "config"
	FlagBaseURL   = "base-url"
	FlagMirror    = "mirror"
	FlagMirrorDir = "mirror-dir"
	FlagPageSize  = "page-size"
	FlagTheme     = "theme"
	FlagLogFile   = "log-file"
	FlagLogLevel  = "log-level"
)

// RegisterFlags adds the config flags to fs. Defaults shown in help are the
// built-in ones; files and environment still apply when a flag is left unset.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "Path to a TOML config file")
	fs.String(FlagBaseURL, d.BaseURL, "Base URL of the remote todo API")
	fs.String(FlagMirror, d.Mirror.Backend, "Local mirror backend (json|sqlite|redis|memory)")
	fs.String(FlagMirrorDir, d.Mirror.Dir, "Directory for the json/sqlite mirror")
	fs.Int(FlagPageSize, d.PageSize, "Todos per page")
	fs.String(FlagTheme, d.Theme, "Output theme (classic|neon|mono)")
	fs.String(FlagLogFile, "", "Write logs to this file")
	fs.String(FlagLogLevel, d.Log.Level, "Log level (debug|info|warn|error)")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	str := func(name string, dst *string) error {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return nil
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	for name, dst := range map[string]*string{
		FlagBaseURL:   &cfg.BaseURL,
		FlagMirror:    &cfg.Mirror.Backend,
		FlagMirrorDir: &cfg.Mirror.Dir,
		FlagTheme:     &cfg.Theme,
		FlagLogFile:   &cfg.Log.File,
		FlagLogLevel:  &cfg.Log.Level,
	} {
		if err := str(name, dst); err != nil {
			return err
		}
	}
	if fs.Lookup(FlagPageSize) != nil && fs.Changed(FlagPageSize) {
		n, err := fs.GetInt(FlagPageSize)
		if err != nil {
			return err
		}
		cfg.PageSize = n
	}
	return nil
}
