package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type panicky struct{ generation int }

func (p panicky) Init() tea.Cmd { return nil }

func (p panicky) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "x" {
		panic("index out of range")
	}
	return p, nil
}

func (p panicky) View() string { return "ok" }

func TestBoundaryRecoversAndReloads(t *testing.T) {
	built := 0
	b := newBoundary(func() tea.Model {
		built++
		return panicky{generation: built}
	}, log.New(io.Discard))

	next, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	b = next.(boundary)
	if cmd != nil || b.crash == nil {
		t.Fatalf("panic was not captured")
	}
	if view := b.View(); !strings.Contains(view, "Something went wrong") || !strings.Contains(view, "index out of range") {
		t.Fatalf("unexpected crash view:\n%s", view)
	}

	// Other keys are ignored on the crash page.
	next, _ = b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	b = next.(boundary)
	if b.crash == nil {
		t.Fatalf("crash page dismissed by an unrelated key")
	}

	next, _ = b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	b = next.(boundary)
	if b.crash != nil || built != 2 || b.inner.(panicky).generation != 2 {
		t.Fatalf("reload did not rebuild the model (built=%d)", built)
	}
	if b.View() != "ok" {
		t.Fatalf("reloaded view = %q", b.View())
	}
}
