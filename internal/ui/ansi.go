package ui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Printer writes styled one-shot output for the CLI.
type Printer struct {
	out, err io.Writer
	theme    Theme
	profile  termenv.Profile
}

type PrinterOption func(*Printer)

// WithProfile pins the color profile instead of detecting it from out.
func WithProfile(p termenv.Profile) PrinterOption {
	return func(pr *Printer) { pr.profile = p }
}

// NewPrinter detects the color profile of out, honoring NO_COLOR and
// CLICOLOR_FORCE. The mono theme never emits color.
func NewPrinter(out, errOut io.Writer, theme Theme, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:     out,
		err:     errOut,
		theme:   theme,
		profile: termenv.NewOutput(out).EnvColorProfile(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if theme.Mono {
		p.profile = termenv.Ascii
	}
	return p
}

func (p *Printer) Theme() Theme      { return p.theme }
func (p *Printer) Out() io.Writer    { return p.out }
func (p *Printer) ErrOut() io.Writer { return p.err }

// C colors s with an ANSI-256 code. An empty code leaves s alone.
func (p *Printer) C(color, s string) string {
	if color == "" {
		return s
	}
	return p.profile.String(s).Foreground(p.profile.Color(color)).String()
}

func (p *Printer) Bold(s string) string  { return p.profile.String(s).Bold().String() }
func (p *Printer) Faint(s string) string { return p.profile.String(s).Faint().String() }

func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.out, p.C(p.theme.Success, p.theme.SymDone+" "+msg))
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.err, p.C(p.theme.Error, p.theme.SymFail+" "+msg))
}

// Hint prints a muted line to the error stream.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.err, p.C(p.theme.Muted, msg))
}
