package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SyntheticUserID is the owner tag stamped on every todo created locally.
const SyntheticUserID = 1

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid todo")

// Todo is the domain model for a todo entry, shaped like the remote resource.
// Provisional marks an entry whose id was assigned locally and not yet
// confirmed by the server; it only ever lives in the local mirror.
type Todo struct {
	ID          int    `json:"id" yaml:"id"`
	UserID      int    `json:"userId" yaml:"userId"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Completed   bool   `json:"completed" yaml:"completed"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Provisional bool   `json:"provisional,omitempty" yaml:"provisional,omitempty"`
}

// Collection is an ordered list of todos. Newest additions sit at the front.
type Collection []Todo

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// MaxID returns the largest id in c, or 0 when c is empty.
func (c Collection) MaxID() int {
	top := 0
	for _, t := range c {
		if t.ID > top {
			top = t.ID
		}
	}
	return top
}

// Index returns the position of the todo with the given id, or -1.
func (c Collection) Index(id int) int {
	for i, t := range c {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) Find(id int) (Todo, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return Todo{}, false
}

// Equal reports whether both collections hold the same todos in the same order.
// A nil and an empty collection are equal.
func (c Collection) Equal(other Collection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Stats counts completed and pending entries.
func (c Collection) Stats() (done, pending int) {
	for _, t := range c {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Search keeps todos whose title or description contains query, ignoring
// case. A blank query keeps everything.
func (c Collection) Search(query string) Collection {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c
	}
	out := make(Collection, 0, len(c))
	for _, t := range c {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// PageCount is the number of pages n entries fill. There is always at least one.
func PageCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Page returns the zero-based page p of c. Out-of-range pages are empty.
func (c Collection) Page(p, size int) Collection {
	if size < 1 || p < 0 {
		return nil
	}
	start := p * size
	if start >= len(c) {
		return nil
	}
	return c[start:min(start+size, len(c))]
}

// Fields is a partial set of submitted todo attributes. Nil means "not submitted".
type Fields struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply overwrites the submitted fields of t and leaves the rest alone.
func (f Fields) Apply(t Todo) Todo {
	if f.Title != nil {
		t.Title = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	return t
}

// Empty reports whether no field was submitted.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Completed == nil
}

func String(s string) *string { return &s }
func Bool(b bool) *bool       { return &b }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required-field presence. Titles are trimmed before the check,
// so a blank title is as missing as an empty one.
func Validate(t Todo) error {
	t.Title = strings.TrimSpace(t.Title)
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", ErrInvalid, strings.ToLower(e.Field()))
		default:
			return fmt.Errorf("%w: %s is invalid", ErrInvalid, strings.ToLower(e.Field()))
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
