package reconcile

import (
	"context"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
)

// Load fills the collection from the mirror, or from the remote (then
// mirrored) when the mirror is empty. Concurrent calls share one fetch.
func (s *Store) Load(ctx context.Context) error {
	_, err, _ := s.loads.Do("load", func() (any, error) {
		return nil, s.load(ctx, false)
	})
	return err
}

// Refresh bypasses the mirror: it fetches the remote collection, mirrors it
// and publishes it.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.loads.Do("refresh", func() (any, error) {
		return nil, s.load(ctx, true)
	})
	return err
}

func (s *Store) load(ctx context.Context, remoteOnly bool) error {
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	gen := s.gen
	id := s.nextLoad
	s.nextLoad++
	s.cancels[id] = cancel
	s.loading++
	s.mu.Unlock()
	s.notify()
	defer s.endLoad(id)

	todos, source, err := s.fetch(loadCtx, remoteOnly)
	if err != nil {
		s.mu.Lock()
		stale := s.gen != gen || s.mutating
		if !stale && !s.loaded {
			s.loadErr = err
		}
		s.mu.Unlock()
		if stale {
			s.logger.Debug("load discarded", "reason", "superseded by mutation")
			return nil
		}
		s.logger.Error("load failed", "err", err)
		return err
	}
	if source == sourceMirror {
		s.install(gen, todos, source)
		return nil
	}

	// The mirror write runs on the executor: it is ordered with mutation
	// writes and never holds mu, so Snapshot does not wait on storage I/O.
	done := make(chan struct{})
	err = s.exec.submit(func() {
		defer close(done)
		s.mu.RLock()
		stale := s.gen != gen
		s.mu.RUnlock()
		if stale {
			s.logger.Debug("load discarded", "reason", "superseded by mutation")
			return
		}
		if err := s.mirror.Write(loadCtx, todos); err != nil {
			s.logger.Warn("mirror write after fetch failed", "err", err)
		}
		s.install(gen, todos, source)
	})
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (s *Store) endLoad(id uint64) {
	s.mu.Lock()
	delete(s.cancels, id)
	s.loading--
	s.mu.Unlock()
	s.notify()
}

// install publishes a loaded collection unless a mutation began after the
// load did.
func (s *Store) install(gen uint64, todos model.Collection, source string) {
	s.mu.Lock()
	if s.gen != gen || s.mutating {
		s.mu.Unlock()
		s.logger.Debug("load discarded", "reason", "superseded by mutation")
		return
	}
	s.todos = todos
	s.loaded = true
	s.loadErr = nil
	s.mu.Unlock()
	s.notify()
	s.logger.Info("collection loaded", "source", source, "todos", len(todos))
}

const (
	sourceMirror = "mirror"
	sourceRemote = "remote"
)

func (s *Store) fetch(ctx context.Context, remoteOnly bool) (model.Collection, string, error) {
	if !remoteOnly {
		cached, ok, err := s.mirror.Read(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("read mirror: %w", err)
		}
		if ok {
			return cached, sourceMirror, nil
		}
	}
	todos, err := s.remote.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetch todos: %w", err)
	}
	return todos, sourceRemote, nil
}

// suspendLoads cancels in-flight loads and marks a mutation as running, so
// a load finishing later cannot overwrite speculative state.
func (s *Store) suspendLoads() {
	s.mu.Lock()
	s.gen++
	s.mutating = true
	cancels := make([]context.CancelFunc, 0, len(s.cancels))
	for _, c := range s.cancels {
		cancels = append(cancels, c)
	}
	s.mu.Unlock()
	for _, c := range cancels {
		c()
	}
	if len(cancels) > 0 {
		s.logger.Debug("suspended in-flight loads", "count", len(cancels))
	}
}

func (s *Store) resumeLoads() {
	s.mu.Lock()
	s.mutating = false
	s.mu.Unlock()
}

// Get finds one todo: in memory first, then in the mirror, then remotely.
func (s *Store) Get(ctx context.Context, id int) (model.Todo, error) {
	if t, ok := s.current().Find(id); ok {
		return t, nil
	}
	cached, ok, err := s.mirror.Read(ctx)
	if err != nil {
		return model.Todo{}, fmt.Errorf("read mirror: %w", err)
	}
	if ok {
		if t, found := cached.Find(id); found {
			return t, nil
		}
	}
	t, err := s.remote.Get(ctx, id)
	if err != nil {
		return model.Todo{}, &NotFoundError{ID: id, Err: err}
	}
	return t, nil
}

// ClearMirror drops the persisted collection. The in-memory state is kept.
func (s *Store) ClearMirror(ctx context.Context) error {
	done := make(chan error, 1)
	if err := s.exec.submit(func() { done <- s.mirror.Clear(ctx) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
