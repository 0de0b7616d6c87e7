package ui

import "strings"

// Theme bundles palette, symbols and box borders.
// Colors are ANSI-256 codes so both termenv and lipgloss can use them.
// An empty color means "no color".
type Theme struct {
	Name                                   string
	Title, Muted, Accent                   string
	Success, Error, Pending                string
	BoxUnchecked, BoxChecked               string
	CornerTL, CornerTR, CornerBL, CornerBR string
	H, V                                   string
	SymDone, SymPending, SymFail           string
	Mono                                   bool
}

var themes = map[string]Theme{
	"classic": {
		Name:  "classic",
		Title: "15", Muted: "8", Accent: "12",
		Success: "42", Error: "9", Pending: "214",
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymDone: "✔", SymPending: "•", SymFail: "✖",
	},
	"neon": {
		Name:  "neon",
		Title: "13", Muted: "8", Accent: "14",
		Success: "10", Error: "9", Pending: "11",
		BoxUnchecked: "◻", BoxChecked: "◼",
		CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
		H: "─", V: "│",
		SymDone: "✔", SymPending: "•", SymFail: "✖",
	},
	"mono": {
		Name:         "mono",
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
		H: "-", V: "|",
		SymDone: "x", SymPending: "-", SymFail: "!",
		Mono: true,
	},
}

// Themes lists the known theme names.
func Themes() []string { return []string{"classic", "neon", "mono"} }

// Lookup returns the named theme, falling back to classic.
func Lookup(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes["classic"]
}

// Box is the checkbox glyph for a completed flag.
func (t Theme) Box(done bool) string {
	if done {
		return t.BoxChecked
	}
	return t.BoxUnchecked
}
