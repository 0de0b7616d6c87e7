package reconcile

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every lookup or mutation aimed at a missing id.
var ErrNotFound = errors.New("not found")

// ErrNotLoaded rejects intents issued before any collection was loaded.
// Speculating from an empty base would overwrite the mirror and reuse ids.
var ErrNotLoaded = errors.New("todos not loaded yet")

type NotFoundError struct {
	ID  int
	Err error // remote cause, if the lookup reached the server
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo with ID %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.Err}
}

// MutationError reports an intent whose speculative state was rolled back.
type MutationError struct {
	Intent Intent
	ID     int
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s todo: %v", e.Intent.Verb(), e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// UserMessage is the transient message shown to whoever issued the intent.
func (e *MutationError) UserMessage() string {
	return fmt.Sprintf("Failed to %s todo: %v", e.Intent.Verb(), e.Err)
}
