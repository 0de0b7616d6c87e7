package reconcile

import (
	"errors"
	"sync"
)

// ErrClosed is returned for intents submitted after Close.
var ErrClosed = errors.New("store closed")

// executor runs submitted tasks one at a time, in submission order, on a
// single goroutine. Every mutation of the collection goes through it.
type executor struct {
	mu     sync.RWMutex
	closed bool
	tasks  chan func()
	done   chan struct{}
}

func newExecutor(depth int) *executor {
	if depth < 1 {
		depth = 1
	}
	e := &executor{
		tasks: make(chan func(), depth),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.done)
	for task := range e.tasks {
		task()
	}
}

// submit queues task. It blocks while the queue is full.
func (e *executor) submit(task func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	e.tasks <- task
	return nil
}

// close stops accepting tasks and waits for queued ones to finish.
func (e *executor) close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()
	<-e.done
}
