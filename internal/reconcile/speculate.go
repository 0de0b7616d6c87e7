package reconcile

import (
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

// Intent is one of the four mutations a view can ask for.
type Intent int

const (
	IntentAdd Intent = iota
	IntentEdit
	IntentDelete
	IntentToggle
)

func (i Intent) String() string {
	switch i {
	case IntentAdd:
		return "add"
	case IntentEdit:
		return "edit"
	case IntentDelete:
		return "delete"
	case IntentToggle:
		return "toggle"
	}
	return "unknown"
}

// Verb is how the intent reads in "Failed to <verb> todo".
func (i Intent) Verb() string {
	if i == IntentToggle {
		return "update"
	}
	return i.String()
}

// The speculate* functions derive the next collection from the current one.
// They never modify their input.

func speculateAdd(cur model.Collection, f model.Fields, userID int) (model.Collection, model.Todo, error) {
	t := f.Apply(model.Todo{})
	if err := model.Validate(t); err != nil {
		return nil, model.Todo{}, err
	}
	t.ID = cur.MaxID() + 1
	t.UserID = userID
	t.Provisional = true

	next := make(model.Collection, 0, len(cur)+1)
	next = append(next, t)
	next = append(next, cur...)
	return next, t, nil
}

func speculateEdit(cur model.Collection, id int, f model.Fields) (model.Collection, model.Todo, error) {
	i := cur.Index(id)
	if i < 0 {
		return nil, model.Todo{}, &NotFoundError{ID: id}
	}
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return nil, model.Todo{}, model.Validate(model.Todo{})
	}
	next := cur.Clone()
	next[i] = f.Apply(next[i])
	return next, next[i], nil
}

func speculateDelete(cur model.Collection, id int) (model.Collection, model.Todo, error) {
	i := cur.Index(id)
	if i < 0 {
		return nil, model.Todo{}, &NotFoundError{ID: id}
	}
	removed := cur[i]
	next := make(model.Collection, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	return next, removed, nil
}

func speculateToggle(cur model.Collection, id int) (model.Collection, model.Todo, error) {
	i := cur.Index(id)
	if i < 0 {
		return nil, model.Todo{}, &NotFoundError{ID: id}
	}
	next := cur.Clone()
	next[i].Completed = !next[i].Completed
	return next, next[i], nil
}

// reconcileCreated swaps the provisional id for the server's once the create
// is confirmed. The server id is only taken when it is set and unused;
// otherwise the local id stays and just loses its provisional mark.
func reconcileCreated(cur model.Collection, provisionalID int, confirmed model.Todo) (model.Collection, model.Todo, bool) {
	i := cur.Index(provisionalID)
	if i < 0 || !cur[i].Provisional {
		return cur, model.Todo{}, false
	}
	next := cur.Clone()
	next[i].Provisional = false
	if confirmed.ID != 0 && confirmed.ID != provisionalID && cur.Index(confirmed.ID) < 0 {
		next[i].ID = confirmed.ID
	}
	return next, next[i], true
}
