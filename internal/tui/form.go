package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldCompleted
	fieldCount
)

// form is the add/edit dialog. id is 0 when adding.
type form struct {
	id          int
	title       textinput.Model
	description textinput.Model
	completed   bool
	focus       formField
	err         string
	saving      bool
}

func newForm(t *model.Todo) form {
	f := form{
		title:       textinput.New(),
		description: textinput.New(),
	}
	f.title.Prompt = "Title       "
	f.title.Placeholder = "What needs doing?"
	f.title.CharLimit = 200
	f.description.Prompt = "Description "
	f.description.Placeholder = "optional"
	f.description.CharLimit = 500
	if t != nil {
		f.id = t.ID
		f.title.SetValue(t.Title)
		f.title.CursorEnd()
		f.description.SetValue(t.Description)
		f.completed = t.Completed
	}
	return f
}

func (f form) editing() bool { return f.id != 0 }

// focusCmd focuses the current field and blurs the others.
func (f *form) focusCmd() tea.Cmd {
	f.title.Blur()
	f.description.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	}
	return nil
}

// validate reports the first problem with the form, or "".
func (f form) validate() string {
	if strings.TrimSpace(f.title.Value()) == "" {
		return "Title is required"
	}
	return ""
}

// fields is what the form submits. Every field is sent, so an edit is a
// shallow merge of all three.
func (f form) fields() model.Fields {
	return model.Fields{
		Title:       model.String(strings.TrimSpace(f.title.Value())),
		Description: model.String(strings.TrimSpace(f.description.Value())),
		Completed:   model.Bool(f.completed),
	}
}

// update handles keys that stay inside the form. Submit and cancel are the
// caller's business.
func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			f.focus = (f.focus + 1) % fieldCount
			return f, f.focusCmd()
		case "shift+tab", "up":
			f.focus = (f.focus + fieldCount - 1) % fieldCount
			return f, f.focusCmd()
		case " ":
			if f.focus == fieldCompleted {
				f.completed = !f.completed
				return f, nil
			}
		}
	}
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
		if f.err != "" && f.validate() == "" {
			f.err = ""
		}
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	}
	return f, cmd
}

func (f form) view(st styles) string {
	heading := "Add todo"
	if f.editing() {
		heading = "Edit todo"
	}
	check := "[ ] Completed"
	if f.completed {
		check = "[x] Completed"
	}
	if f.focus == fieldCompleted {
		check = st.selected.Render(check)
	}

	lines := []string{st.title.Render(heading), f.title.View(), f.description.View(), check, ""}
	switch {
	case f.saving:
		lines = append(lines, st.pending.Render("Saving..."))
	case f.err != "":
		lines = append(lines, st.err.Render(f.err))
	default:
		lines = append(lines, st.help.Render("enter save • tab next field • space check • esc cancel"))
	}
	return st.dialog.Render(strings.Join(lines, "\n"))
}
