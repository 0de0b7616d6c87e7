// Package logging builds the charm logger shared by the CLI and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Sink decides where records go when no log file is configured.
type Sink int

const (
	// SinkStderr is for one-shot CLI commands.
	SinkStderr Sink = iota
	// SinkDiscard is for the TUI, which owns the terminal.
	SinkDiscard
)

// New returns a logger writing to file when set, otherwise to the sink.
// The returned closer releases the file and is safe to call on every path.
func New(file, level string, sink Sink) (*log.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer
	var closer io.Closer = nopCloser{}
	switch {
	case file != "":
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	case sink == SinkDiscard:
		w = io.Discard
	default:
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	if file != "" {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger, closer, nil
}

// Discard is the default logger of components built without one.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", level)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
