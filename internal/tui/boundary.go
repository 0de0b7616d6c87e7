package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// boundary wraps the app model. A panic in the wrapped model replaces the
// screen with an error page instead of tearing down the terminal; pressing
// r builds a fresh model.
type boundary struct {
	inner  tea.Model
	build  func() tea.Model
	crash  error
	logger *log.Logger
}

func newBoundary(build func() tea.Model, logger *log.Logger) boundary {
	return boundary{inner: build(), build: build, logger: logger}
}

func (b boundary) Init() tea.Cmd { return b.inner.Init() }

func (b boundary) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	if b.crash != nil {
		k, ok := msg.(tea.KeyMsg)
		if !ok {
			return b, nil
		}
		switch k.String() {
		case "r":
			b.crash = nil
			b.inner = b.build()
			return b, b.inner.Init()
		case "q", "ctrl+c":
			return b, tea.Quit
		}
		return b, nil
	}

	defer func() {
		if r := recover(); r != nil {
			b.crash = fmt.Errorf("%v", r)
			b.logger.Error("view crashed", "panic", r)
			next, cmd = b, nil
		}
	}()
	b.inner, cmd = b.inner.Update(msg)
	return b, cmd
}

func (b boundary) View() (out string) {
	if b.crash != nil {
		return crashView(b.crash)
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("view render crashed", "panic", r)
			out = crashView(fmt.Errorf("%v", r))
		}
	}()
	return b.inner.View()
}

func crashView(err error) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("Something went wrong"),
		"",
		err.Error(),
		"",
		lipgloss.NewStyle().Faint(true).Render("r reload • q quit"),
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Render(strings.Join(lines, "\n"))
}
