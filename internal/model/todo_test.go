package model

import (
	"errors"
	"testing"
)

func TestCollectionMaxIDAndIndex(t *testing.T) {
	c := Collection{{ID: 3}, {ID: 7}, {ID: 1}}
	if got := c.MaxID(); got != 7 {
		t.Fatalf("MaxID: got %d, want 7", got)
	}
	if got := (Collection{}).MaxID(); got != 0 {
		t.Fatalf("MaxID on empty: got %d, want 0", got)
	}
	if got := c.Index(1); got != 2 {
		t.Fatalf("Index(1): got %d, want 2", got)
	}
	if got := c.Index(99); got != -1 {
		t.Fatalf("Index(99): got %d, want -1", got)
	}
}

func TestCollectionCloneIsIndependent(t *testing.T) {
	c := Collection{{ID: 1, Title: "A"}}
	cl := c.Clone()
	cl[0].Title = "changed"
	if c[0].Title != "A" {
		t.Fatalf("clone shares storage with original")
	}
	if !Collection(nil).Equal(Collection{}) {
		t.Fatalf("nil and empty collections should be equal")
	}
}

func TestFieldsApplyOnlyTouchesSubmitted(t *testing.T) {
	base := Todo{ID: 4, UserID: 1, Title: "Buy milk", Description: "2L", Completed: false}
	got := Fields{Completed: Bool(true)}.Apply(base)
	want := base
	want.Completed = true
	if got != want {
		t.Fatalf("Apply: got %+v, want %+v", got, want)
	}

	got = Fields{Title: String("  Buy oat milk ")}.Apply(base)
	if got.Title != "Buy oat milk" || got.Description != "2L" {
		t.Fatalf("Apply title: got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Todo{Title: "ok"}); err != nil {
		t.Fatalf("Validate: unexpected error %v", err)
	}
	for _, title := range []string{"", "   "} {
		err := Validate(Todo{Title: title})
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("Validate(%q): got %v, want ErrInvalid", title, err)
		}
		if err.Error() != "invalid todo: title is required" {
			t.Fatalf("Validate(%q): unexpected message %q", title, err.Error())
		}
	}
}

func TestStats(t *testing.T) {
	done, pending := Collection{{Completed: true}, {}, {}}.Stats()
	if done != 1 || pending != 2 {
		t.Fatalf("Stats: got (%d,%d), want (1,2)", done, pending)
	}
}

func searchTitles(c Collection) string {
	out := ""
	for i, t := range c {
		if i > 0 {
			out += ","
		}
		out += t.Title
	}
	return out
}

func TestCollectionSearch(t *testing.T) {
	todos := Collection{
		{ID: 1, Title: "Buy milk"},
		{ID: 2, Title: "Walk dog", Description: "around the PARK"},
		{ID: 3, Title: "Read"},
	}
	tests := []struct {
		query string
		want  string
	}{
		{"", "Buy milk,Walk dog,Read"},
		{"   ", "Buy milk,Walk dog,Read"},
		{"mil", "Buy milk"},
		{"MILK", "Buy milk"},
		{"park", "Walk dog"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		if got := searchTitles(todos.Search(tt.query)); got != tt.want {
			t.Errorf("Search(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestPaging(t *testing.T) {
	counts := []struct{ n, size, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{5, 0, 5},
	}
	for _, tt := range counts {
		if got := PageCount(tt.n, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}

	var c Collection
	for id := 1; id <= 23; id++ {
		c = append(c, Todo{ID: id})
	}
	if p := c.Page(0, 10); len(p) != 10 || p[0].ID != 1 {
		t.Fatalf("first page = %+v", p)
	}
	if p := c.Page(2, 10); len(p) != 3 || p[0].ID != 21 {
		t.Fatalf("last page = %+v", p)
	}
	if p := c.Page(3, 10); p != nil {
		t.Fatalf("page past the end should be empty, got %+v", p)
	}
}
