// Package tui is the interactive view over a reconciling todo store.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/reconcile"
)

// Store is what the view needs from the reconciling store.
type Store interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Get(ctx context.Context, id int) (model.Todo, error)
	Add(ctx context.Context, f model.Fields) (model.Todo, error)
	Edit(ctx context.Context, id int, f model.Fields) (model.Todo, error)
	Delete(ctx context.Context, id int) error
	Toggle(ctx context.Context, id int) (model.Todo, error)
	Snapshot() reconcile.Snapshot
	Subscribe() (<-chan reconcile.Snapshot, func())
}

var _ Store = (*reconcile.Store)(nil)

type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	Theme          string
	Logger         *log.Logger
}

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = config.DefaultPageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = config.DefaultSearchDebounce
	}
	if o.Theme == "" {
		o.Theme = config.DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, s Store, opts Options) error {
	opts = opts.withDefaults()
	root := newBoundary(func() tea.Model { return newAppModel(ctx, s, opts) }, opts.Logger)

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))

	snaps, cancel := s.Subscribe()
	defer cancel()
	go func() {
		for snap := range snaps {
			p.Send(snapshotMsg(snap))
		}
	}()

	_, err := p.Run()
	return err
}
