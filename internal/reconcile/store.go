// Package reconcile holds the authoritative in-memory todo collection and
// mediates every change to it.
//
// Each mutation intent (add, edit, delete, toggle) follows the same protocol:
// suspend in-flight loads, speculatively apply the change and persist it to
// the local mirror before publishing it, then issue the remote call. Success
// keeps the speculative state; failure restores the snapshot taken before the
// change, both in memory and in the mirror.
//
// All mutations execute through one serialized actor. An intent's whole
// protocol completes before the next one starts, and each intent derives its
// base from the state current at its turn.
package reconcile

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Remote is the server side of the collection.
type Remote interface {
	List(ctx context.Context) (model.Collection, error)
	Get(ctx context.Context, id int) (model.Todo, error)
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	Update(ctx context.Context, id int, t model.Todo) (model.Todo, error)
	Patch(ctx context.Context, id int, f model.Fields) (model.Todo, error)
	Delete(ctx context.Context, id int) error
}

// Snapshot is what a view reads: the collection plus load and pending status.
type Snapshot struct {
	Todos   model.Collection
	Loading bool
	Loaded  bool
	// Err is the initial-load failure. It is only set while nothing was loaded.
	Err     error
	Pending map[Intent]int
}

// IsPending reports whether an intent of kind i is queued or in flight.
func (s Snapshot) IsPending(i Intent) bool { return s.Pending[i] > 0 }

type Store struct {
	remote Remote
	mirror store.Mirror
	logger *log.Logger
	userID int

	exec  *executor
	loads singleflight.Group

	mu       sync.RWMutex
	todos    model.Collection
	loading  int
	loaded   bool
	loadErr  error
	pending  map[Intent]int
	gen      uint64 // bumped by every mutation; loads begun under an older gen are dropped
	mutating bool
	cancels  map[uint64]context.CancelFunc
	nextLoad uint64

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

type Option func(*Store)

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithUserID sets the owner tag stamped on added todos.
func WithUserID(id int) Option {
	return func(s *Store) { s.userID = id }
}

func New(remote Remote, mirror store.Mirror, opts ...Option) *Store {
	s := &Store{
		remote:  remote,
		mirror:  mirror,
		logger:  logging.Discard(),
		userID:  model.SyntheticUserID,
		pending: map[Intent]int{},
		cancels: map[uint64]context.CancelFunc{},
		subs:    map[int]chan Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("reconcile")
	s.exec = newExecutor(64)
	return s
}

// Close waits for queued intents, then ends every subscription.
// The mirror is left open; it belongs to the caller.
func (s *Store) Close() {
	s.exec.close()
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make(map[Intent]int, len(s.pending))
	for k, v := range s.pending {
		if v > 0 {
			pending[k] = v
		}
	}
	return Snapshot{
		Todos:   s.todos.Clone(),
		Loading: s.loading > 0,
		Loaded:  s.loaded,
		Err:     s.loadErr,
		Pending: pending,
	}
}

// Todos returns a copy of the current collection.
func (s *Store) Todos() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todos.Clone()
}

// Subscribe streams snapshots after every change. Slow readers only ever see
// the latest one. Call cancel to stop.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

// notify must not be called with s.mu held.
func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) current() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todos.Clone()
}

func (s *Store) publish(todos model.Collection) {
	s.mu.Lock()
	s.todos = todos
	s.loaded = true
	s.loadErr = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) addPending(i Intent, delta int) {
	s.mu.Lock()
	s.pending[i] += delta
	s.mu.Unlock()
	s.notify()
}
