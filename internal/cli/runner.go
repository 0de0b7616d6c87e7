// Package cli wires configuration, logging, the local mirror and the remote
// client into the reconciling store, and exposes it as cobra subcommands.
// With no subcommand it starts the interactive TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/remote"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// App carries what every subcommand shares. The zero value uses the real
// terminal, config locations and HTTP transport.
type App struct {
	Stdout, Stderr io.Writer
	// ConfigOptions overrides where configuration is looked up. Flags are
	// filled in per command.
	ConfigOptions config.Options
	HTTPClient    *http.Client

	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
	printer   *ui.Printer
	mirror    store.Mirror
	store     *reconcile.Store
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, app *App) int {
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	defer app.close()

	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	p := app.printer
	if p == nil {
		p = ui.NewPrinter(app.Stdout, app.Stderr, ui.Lookup(config.DefaultTheme))
	}
	p.Fail(message(err))
	if errors.Is(err, reconcile.ErrNotFound) {
		p.Hint("Hint: run `todo ls` to see valid ids")
	}
	if isUsage(err) {
		fmt.Fprintln(p.ErrOut(), "Run 'todo --help' for usage.")
		return ExitUsage
	}
	return ExitFailure
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "An optimistic todo client with a local mirror",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo ls --group
  todo add "Buy milk" --description "two litres"
  todo done 2
  todo rm 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		sink := logging.SinkStderr
		if !cmd.HasParent() {
			sink = logging.SinkDiscard
		}
		return app.setup(cmd, sink)
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newRefreshCmd(app))
	cmd.AddCommand(newCacheCmd(app))
	return cmd
}

// setup resolves config and logging. The store is opened lazily.
func (a *App) setup(cmd *cobra.Command, sink logging.Sink) error {
	opts := a.ConfigOptions
	opts.Flags = cmd.Flags()
	if f := cmd.Flags().Lookup(config.FlagConfig); f != nil && f.Changed {
		opts.ConfigFile = f.Value.String()
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level, sink)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	a.printer = ui.NewPrinter(a.Stdout, a.Stderr, ui.Lookup(cfg.Theme))
	return nil
}

// open builds the reconciling store on first use.
func (a *App) open(ctx context.Context) (*reconcile.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	mirror, err := store.Open(ctx, a.cfg.Mirror, a.logger)
	if err != nil {
		return nil, err
	}
	opts := []remote.Option{remote.WithLogger(a.logger)}
	if a.HTTPClient != nil {
		opts = append(opts, remote.WithHTTPClient(a.HTTPClient))
	}
	client := remote.New(a.cfg.BaseURL, opts...)

	a.mirror = mirror
	a.store = reconcile.New(client, mirror,
		reconcile.WithLogger(a.logger),
		reconcile.WithUserID(a.cfg.UserID),
	)
	return a.store, nil
}

// openLoaded opens the store and fills it, mirror first.
func (a *App) openLoaded(ctx context.Context) (*reconcile.Store, error) {
	s, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *App) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing mirror", "err", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := app.open(cmd.Context())
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), s, tui.Options{
		PageSize:       app.cfg.PageSize,
		SearchDebounce: app.cfg.SearchDebounce,
		Theme:          app.cfg.Theme,
		Logger:         app.logger,
	})
}

// usageError marks bad invocations: exit code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func isUsage(err error) bool {
	var ue usageError
	if errors.As(err, &ue) || errors.Is(err, model.ErrInvalid) {
		return true
	}
	// cobra reports unknown subcommands as plain errors.
	return strings.HasPrefix(err.Error(), "unknown command")
}

func message(err error) string {
	var merr *reconcile.MutationError
	if errors.As(err, &merr) {
		return merr.UserMessage()
	}
	return err.Error()
}
