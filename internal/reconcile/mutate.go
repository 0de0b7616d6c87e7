package reconcile

import (
	"context"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
)

// Add prepends a new todo with a provisional id of max(id)+1 and creates it
// remotely. On success the provisional id is reconciled with the server's.
func (s *Store) Add(ctx context.Context, f model.Fields) (model.Todo, error) {
	return s.submit(ctx, IntentAdd, 0, func(ctx context.Context) (model.Todo, error) {
		var provisional model.Todo
		confirmed, err := s.apply(ctx, IntentAdd, 0,
			func(cur model.Collection) (model.Collection, model.Todo, error) {
				next, t, err := speculateAdd(cur, f, s.userID)
				provisional = t
				return next, t, err
			},
			func(ctx context.Context, t model.Todo) (model.Todo, error) {
				return s.remote.Create(ctx, t)
			})
		if err != nil {
			return model.Todo{}, err
		}
		return s.settleCreate(ctx, provisional, confirmed), nil
	})
}

// Edit shallow-merges f into the todo with the given id and replaces it remotely.
func (s *Store) Edit(ctx context.Context, id int, f model.Fields) (model.Todo, error) {
	return s.submit(ctx, IntentEdit, id, func(ctx context.Context) (model.Todo, error) {
		var merged model.Todo
		_, err := s.apply(ctx, IntentEdit, id,
			func(cur model.Collection) (model.Collection, model.Todo, error) {
				next, t, err := speculateEdit(cur, id, f)
				merged = t
				return next, t, err
			},
			func(ctx context.Context, t model.Todo) (model.Todo, error) {
				return s.remote.Update(ctx, id, t)
			})
		return merged, err
	})
}

// Delete removes the todo with the given id, locally first.
func (s *Store) Delete(ctx context.Context, id int) error {
	_, err := s.submit(ctx, IntentDelete, id, func(ctx context.Context) (model.Todo, error) {
		return s.apply(ctx, IntentDelete, id,
			func(cur model.Collection) (model.Collection, model.Todo, error) {
				return speculateDelete(cur, id)
			},
			func(ctx context.Context, t model.Todo) (model.Todo, error) {
				return t, s.remote.Delete(ctx, id)
			})
	})
	return err
}

// Toggle flips completed and tells the remote the new value explicitly.
func (s *Store) Toggle(ctx context.Context, id int) (model.Todo, error) {
	return s.submit(ctx, IntentToggle, id, func(ctx context.Context) (model.Todo, error) {
		var toggled model.Todo
		_, err := s.apply(ctx, IntentToggle, id,
			func(cur model.Collection) (model.Collection, model.Todo, error) {
				next, t, err := speculateToggle(cur, id)
				toggled = t
				return next, t, err
			},
			func(ctx context.Context, t model.Todo) (model.Todo, error) {
				return s.remote.Patch(ctx, id, model.Fields{Completed: model.Bool(t.Completed)})
			})
		return toggled, err
	})
}

// submit queues fn on the executor and waits for it. If ctx ends first the
// caller stops waiting, but the intent still runs to completion: in-flight
// mutations are never canceled.
func (s *Store) submit(ctx context.Context, intent Intent, id int, fn func(context.Context) (model.Todo, error)) (model.Todo, error) {
	type result struct {
		todo model.Todo
		err  error
	}
	done := make(chan result, 1)
	detached := context.WithoutCancel(ctx)

	s.addPending(intent, 1)
	err := s.exec.submit(func() {
		t, err := fn(detached)
		s.addPending(intent, -1)
		done <- result{t, err}
	})
	if err != nil {
		s.addPending(intent, -1)
		return model.Todo{}, err
	}

	select {
	case r := <-done:
		return r.todo, r.err
	case <-ctx.Done():
		s.logger.Debug("caller stopped waiting", "intent", intent, "id", id)
		return model.Todo{}, ctx.Err()
	}
}

type speculateFunc func(cur model.Collection) (next model.Collection, target model.Todo, err error)
type commitFunc func(ctx context.Context, target model.Todo) (model.Todo, error)

// apply runs the suspend / speculate / commit-or-rollback protocol.
// It returns what the remote answered on success.
func (s *Store) apply(ctx context.Context, intent Intent, id int, speculate speculateFunc, commit commitFunc) (model.Todo, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		return model.Todo{}, ErrNotLoaded
	}

	s.suspendLoads()
	defer s.resumeLoads()

	prev := s.current()
	next, target, err := speculate(prev)
	if err != nil {
		return model.Todo{}, err
	}
	if id == 0 {
		id = target.ID
	}

	if err := s.mirror.Write(ctx, next); err != nil {
		s.logger.Error("mirror write failed", "intent", intent, "id", id, "err", err)
		s.rollback(ctx, intent, id, prev)
		return model.Todo{}, &MutationError{Intent: intent, ID: id, Err: fmt.Errorf("write mirror: %w", err)}
	}
	s.publish(next)
	s.logger.Debug("speculative state published", "intent", intent, "id", id, "todos", len(next))

	confirmed, err := commit(ctx, target)
	if err != nil {
		s.logger.Warn("remote rejected intent, rolling back", "intent", intent, "id", id, "err", err)
		s.rollback(ctx, intent, id, prev)
		return model.Todo{}, &MutationError{Intent: intent, ID: id, Err: err}
	}
	s.logger.Info("intent confirmed", "intent", intent, "id", id)
	return confirmed, nil
}

// rollback restores prev in the mirror and in memory.
func (s *Store) rollback(ctx context.Context, intent Intent, id int, prev model.Collection) {
	if err := s.mirror.Write(ctx, prev); err != nil {
		s.logger.Error("mirror rollback failed", "intent", intent, "id", id, "err", err)
	}
	s.publish(prev)
}

// settleCreate reconciles a confirmed create with the server's answer. The
// reconciled state is published only once it is mirrored; if that write
// fails, memory and mirror both keep the provisional entry.
func (s *Store) settleCreate(ctx context.Context, provisional, confirmed model.Todo) model.Todo {
	next, settled, ok := reconcileCreated(s.current(), provisional.ID, confirmed)
	if !ok {
		return provisional
	}
	if err := s.mirror.Write(ctx, next); err != nil {
		s.logger.Warn("mirror write after create failed, keeping provisional entry",
			"provisional", provisional.ID, "server", confirmed.ID, "err", err)
		return provisional
	}
	s.publish(next)
	if settled.ID != provisional.ID {
		s.logger.Debug("provisional id replaced", "provisional", provisional.ID, "server", settled.ID)
	}
	return settled
}
