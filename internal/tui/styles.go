package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/ui"
)

type styles struct {
	theme ui.Theme

	title    lipgloss.Style
	success  lipgloss.Style
	pending  lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	help     lipgloss.Style
	panel    lipgloss.Style
	dialog   lipgloss.Style
}

func color(code string) lipgloss.TerminalColor {
	if code == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(code)
}

func newStyles(t ui.Theme) styles {
	border := lipgloss.RoundedBorder()
	if t.Mono {
		border = lipgloss.NormalBorder()
	}
	return styles{
		theme:    t,
		title:    lipgloss.NewStyle().Bold(true).Foreground(color(t.Title)),
		success:  lipgloss.NewStyle().Foreground(color(t.Success)),
		pending:  lipgloss.NewStyle().Foreground(color(t.Pending)),
		accent:   lipgloss.NewStyle().Foreground(color(t.Accent)),
		muted:    lipgloss.NewStyle().Faint(true),
		err:      lipgloss.NewStyle().Foreground(color(t.Error)).Bold(true),
		selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		help:     lipgloss.NewStyle().Faint(true),
		panel: lipgloss.NewStyle().
			Border(border).
			BorderForeground(color(t.Muted)).
			Padding(0, 1),
		dialog: lipgloss.NewStyle().
			Border(border).
			BorderForeground(color(t.Accent)).
			Padding(0, 1),
	}
}

func (s styles) box(done bool) string {
	if done {
		return s.success.Render(s.theme.BoxChecked)
	}
	return s.muted.Render(s.theme.BoxUnchecked)
}
