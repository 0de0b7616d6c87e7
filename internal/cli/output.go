package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

const titleWidth = 80

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return usageErrorf("unknown format %q (want table|json|yaml)", format)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return checkFormat(format)
}

type listView struct {
	group  bool
	query  string
	footer string
}

// renderList draws the header and progress for all, then the shown todos.
func renderList(p *ui.Printer, all, shown model.Collection, v listView) {
	t := p.Theme()
	d, pend := all.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		p.Bold(p.C(t.Title, "Todos")),
		p.C(t.Success, t.SymDone), d,
		p.C(t.Pending, t.SymPending), pend,
		p.C(t.Accent, "Total"), len(all),
	)

	lines := []string{header, p.C(t.Muted, ui.ProgressBar(d, d+pend, 28))}
	if v.query != "" {
		lines = append(lines, p.C(t.Muted, fmt.Sprintf("matching %q: %d", v.query, len(all.Search(v.query)))))
	}
	lines = append(lines, "")

	switch {
	case len(all) == 0:
		lines = append(lines, p.Bold("No Todos Yet!"))
	case v.group:
		lines = append(lines, groupLines(p, shown)...)
	default:
		lines = append(lines, flatLines(p, shown)...)
	}
	if v.footer != "" {
		lines = append(lines, "", p.C(t.Muted, v.footer))
	}
	lines = append(lines, "")
	lines = append(lines, p.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	p.Panel(lines)
}

func flatLines(p *ui.Printer, todos model.Collection) []string {
	t := p.Theme()
	if len(todos) == 0 {
		return []string{p.C(t.Muted, "no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, it := range todos {
		color := t.Muted
		if it.Completed {
			color = t.Success
		}
		title := ui.Truncate(it.Title, titleWidth)
		if it.Provisional {
			title += " " + p.Faint("(unconfirmed)")
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			p.Faint(fmt.Sprintf("%4s", fmt.Sprintf("#%d", it.ID))), p.C(color, t.Box(it.Completed)), title))
	}
	return out
}

func groupLines(p *ui.Printer, todos model.Collection) []string {
	t := p.Theme()
	var pending, done model.Collection
	for _, it := range todos {
		if it.Completed {
			done = append(done, it)
		} else {
			pending = append(pending, it)
		}
	}
	section := func(name string, c model.Collection) []string {
		lines := []string{p.C(t.Accent, name)}
		if len(c) == 0 {
			return append(lines, p.C(t.Muted, "(none)"))
		}
		return append(lines, flatLines(p, c)...)
	}
	lines := section("Pending", pending)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func renderTodo(p *ui.Printer, it model.Todo) {
	t := p.Theme()
	status := p.C(t.Pending, "pending")
	if it.Completed {
		status = p.C(t.Success, "done")
	}
	lines := []string{
		p.Bold(p.C(t.Title, it.Title)),
		"",
		fmt.Sprintf("%s %s", p.C(t.Muted, "status:"), status),
		fmt.Sprintf("%s #%d", p.C(t.Muted, "id:    "), it.ID),
		fmt.Sprintf("%s %d", p.C(t.Muted, "user:  "), it.UserID),
	}
	if it.Provisional {
		lines = append(lines, p.Faint("not yet confirmed by the server"))
	}
	if it.Description != "" {
		lines = append(lines, "", it.Description)
	}
	p.Panel(lines)
}
