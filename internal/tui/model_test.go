package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/store"
)

type stubRemote struct {
	listErr error
	fail    error
}

func (r *stubRemote) List(context.Context) (model.Collection, error) { return nil, r.listErr }
func (r *stubRemote) Get(_ context.Context, id int) (model.Todo, error) {
	return model.Todo{}, fmt.Errorf("GET /todos/%d: 404 Not Found", id)
}
func (r *stubRemote) Create(_ context.Context, t model.Todo) (model.Todo, error) { return t, r.fail }
func (r *stubRemote) Update(_ context.Context, _ int, t model.Todo) (model.Todo, error) {
	return t, r.fail
}
func (r *stubRemote) Patch(_ context.Context, id int, f model.Fields) (model.Todo, error) {
	return f.Apply(model.Todo{ID: id}), r.fail
}
func (r *stubRemote) Delete(context.Context, int) error { return r.fail }

func newTestModel(t *testing.T, remote *stubRemote, seed model.Collection) appModel {
	t.Helper()
	ctx := context.Background()
	mirror := store.NewMemory()
	if seed != nil {
		if err := mirror.Write(ctx, seed); err != nil {
			t.Fatalf("seed mirror: %v", err)
		}
	}
	s := reconcile.New(remote, mirror)
	t.Cleanup(s.Close)
	m := newAppModel(ctx, s, Options{SearchDebounce: 10 * time.Millisecond})
	mAny, _ := m.Update(loadedMsg{err: s.Load(ctx)})
	return mAny.(appModel)
}

func send(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	mAny, cmd := m.Update(msg)
	next, ok := mAny.(appModel)
	if !ok {
		t.Fatalf("Update returned %T", mAny)
	}
	return next, cmd
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func titles(c model.Collection) []string {
	out := make([]string, 0, len(c))
	for _, t := range c {
		out = append(out, t.Title)
	}
	return out
}

func TestSearchAppliesAfterDebounce(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{
		{ID: 1, Title: "Buy milk"},
		{ID: 2, Title: "Walk dog"},
	})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.searching {
		t.Fatalf("expected search to be focused")
	}
	m = typeText(t, m, "mil")
	if len(m.visible) != 2 {
		t.Fatalf("query applied before debounce: %v", titles(m.visible))
	}

	// A tick from an earlier keystroke is stale.
	m, _ = send(t, m, searchTickMsg{seq: m.searchSeq - 1})
	if len(m.visible) != 2 {
		t.Fatalf("stale tick applied the query: %v", titles(m.visible))
	}

	start := time.Now()
	msg := m.debounceCmd(m.searchSeq)()
	if elapsed := time.Since(start); elapsed < m.debounce {
		t.Fatalf("debounce fired after %v, want >= %v", elapsed, m.debounce)
	}
	m, _ = send(t, m, msg)
	if got := titles(m.visible); len(got) != 1 || got[0] != "Buy milk" {
		t.Fatalf("visible = %v, want [Buy milk]", got)
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || strings.Contains(view, "Walk dog") {
		t.Fatalf("view does not reflect the filter:\n%s", view)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || m.query != "" || len(m.visible) != 2 {
		t.Fatalf("esc should clear the search")
	}
}

func TestPagination(t *testing.T) {
	var seed model.Collection
	for id := 1; id <= 23; id++ {
		seed = append(seed, model.Todo{ID: id, Title: fmt.Sprintf("todo %d", id)})
	}
	m := newTestModel(t, &stubRemote{}, seed)
	if len(m.page()) != 10 || !strings.Contains(m.View(), "Page 1 of 3") {
		t.Fatalf("unexpected first page")
	}

	right := tea.KeyMsg{Type: tea.KeyRight}
	m, _ = send(t, m, right)
	m, _ = send(t, m, right)
	m, _ = send(t, m, right)
	if m.pager.Page != 2 {
		t.Fatalf("page = %d, want 2", m.pager.Page)
	}
	if p := m.page(); len(p) != 3 || p[0].ID != 21 {
		t.Fatalf("last page = %v", titles(p))
	}
	if !strings.Contains(m.View(), "Page 3 of 3") {
		t.Fatalf("missing pager text")
	}

	// Shrinking the collection pulls the page back into range.
	snap := m.snap
	snap.Todos = seed[:5]
	m, _ = send(t, m, snapshotMsg(snap))
	if m.pager.Page != 0 || m.pager.TotalPages != 1 {
		t.Fatalf("page not clamped: %d/%d", m.pager.Page, m.pager.TotalPages)
	}
}

func TestToggleKeyIssuesIntent(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{{ID: 1, Title: "A"}})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if cmd == nil {
		t.Fatalf("expected toggle command")
	}
	m, _ = send(t, m, cmd())
	if !m.snap.Todos[0].Completed {
		t.Fatalf("toggle not reflected: %+v", m.snap.Todos)
	}
	if m.status != "" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestAddFailureShowsTransientError(t *testing.T) {
	m := newTestModel(t, &stubRemote{fail: errors.New("POST /todos: 500 Internal Server Error")},
		model.Collection{{ID: 1, Title: "A"}})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if m.mode != modeForm {
		t.Fatalf("expected form mode")
	}
	m = typeText(t, m, "B")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.form.saving {
		t.Fatalf("expected a pending save")
	}
	if !strings.Contains(m.View(), "Saving...") {
		t.Fatalf("form should show Saving...")
	}

	m, tick := send(t, m, cmd())
	if m.mode != modeList {
		t.Fatalf("form still open after failure")
	}
	if !m.statusErr || !strings.HasPrefix(m.status, "Failed to add todo:") {
		t.Fatalf("status = %q (err=%v)", m.status, m.statusErr)
	}
	if got := titles(m.snap.Todos); len(got) != 1 || got[0] != "A" {
		t.Fatalf("collection not rolled back: %v", got)
	}
	if tick == nil {
		t.Fatalf("expected a status timer")
	}

	m, _ = send(t, m, clearStatusMsg{seq: m.statusSeq})
	if m.status != "" {
		t.Fatalf("status not cleared")
	}
}

func TestAddBlankTitleKeepsFormOpen(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.mode != modeForm || m.form.err != "Title is required" {
		t.Fatalf("blank title should be rejected in place: mode=%v err=%q", m.mode, m.form.err)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatalf("esc should close the form")
	}
}

func TestEditFormPrefillsAndMerges(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{{ID: 4, Title: "Old", Description: "keep me"}})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if m.form.id != 4 || m.form.title.Value() != "Old" {
		t.Fatalf("form not prefilled: %+v", m.form.fields())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = typeText(t, m, "New")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.form.completed {
		t.Fatalf("space on the checkbox should check it")
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, cmd())

	want := model.Todo{ID: 4, Title: "New", Description: "keep me", Completed: true}
	if got := m.snap.Todos[0]; got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if m.status != "Todo updated" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestDeleteConfirmStaysOpenWhileDeleting(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.mode != modeConfirmDelete || m.confirmID != 1 {
		t.Fatalf("expected confirm for id 1, got mode=%v id=%d", m.mode, m.confirmID)
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil || !strings.Contains(m.View(), "Deleting...") {
		t.Fatalf("dialog should show Deleting...")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.mode != modeConfirmDelete {
		t.Fatalf("dialog closed while deleting")
	}

	m, _ = send(t, m, cmd())
	if m.mode != modeList {
		t.Fatalf("dialog still open after delete")
	}
	if got := titles(m.snap.Todos); len(got) != 1 || got[0] != "B" {
		t.Fatalf("unexpected collection %v", got)
	}
}

func TestEmptyState(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{})
	if !strings.Contains(m.View(), "No Todos Yet!") {
		t.Fatalf("missing empty state:\n%s", m.View())
	}
}

func TestLoadErrorBlocks(t *testing.T) {
	m := newTestModel(t, &stubRemote{listErr: errors.New("GET /todos: 503 Service Unavailable")}, nil)
	view := m.View()
	if !strings.Contains(view, "Failed to load todos") || !strings.Contains(view, "Error:") || !strings.Contains(view, "503") {
		t.Fatalf("missing load error screen:\n%s", view)
	}
	// List keys do nothing until something is loaded.
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd != nil || m.mode != modeList {
		t.Fatalf("add should be blocked")
	}
	if m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Fatalf("a failed initial load offers no retry")
	}
	if strings.Contains(m.View(), "retry") {
		t.Fatalf("error screen should not offer a retry")
	}
	if _, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("q should quit")
	}
}

func TestDetailView(t *testing.T) {
	m := newTestModel(t, &stubRemote{}, model.Collection{{ID: 7, UserID: 3, Title: "Buy milk", Description: "two litres"}})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeDetail || !m.detailLoading || cmd == nil {
		t.Fatalf("enter should open the detail view")
	}
	m, _ = send(t, m, cmd())
	view := ansi.Strip(m.View())
	for _, want := range []string{"Buy milk", "two litres", "Pending"} {
		if !strings.Contains(view, want) {
			t.Fatalf("detail view missing %q:\n%s", want, view)
		}
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatalf("esc should return to the list")
	}
}

func TestUserMessage(t *testing.T) {
	nf := &reconcile.NotFoundError{ID: 9}
	if got := userMessage(reconcile.IntentToggle, nf); got != "todo with ID 9 not found" {
		t.Fatalf("got %q", got)
	}
	merr := &reconcile.MutationError{Intent: reconcile.IntentDelete, ID: 1, Err: errors.New("boom")}
	if got := userMessage(reconcile.IntentDelete, merr); got != "Failed to delete todo: boom" {
		t.Fatalf("got %q", got)
	}
	if got := userMessage(reconcile.IntentToggle, errors.New("closed")); got != "Failed to update todo: closed" {
		t.Fatalf("got %q", got)
	}
}
