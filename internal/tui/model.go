package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/ui"
)

// statusTTL is how long a transient status line stays up.
const statusTTL = 4 * time.Second

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeDetail
)

type (
	loadedMsg      struct{ err error }
	snapshotMsg    reconcile.Snapshot
	searchTickMsg  struct{ seq int }
	clearStatusMsg struct{ seq int }
	detailMsg      struct {
		todo model.Todo
		err  error
	}
	intentDoneMsg struct {
		intent reconcile.Intent
		id     int
		err    error
	}
)

type appModel struct {
	ctx    context.Context
	store  Store
	logger *log.Logger
	st     styles
	keys   keyMap

	help    help.Model
	spinner spinner.Model
	pager   paginator.Model
	search  textinput.Model

	pageSize  int
	debounce  time.Duration
	searching bool
	query     string
	searchSeq int

	snap    reconcile.Snapshot
	visible model.Collection
	cursor  int

	mode          mode
	form          form
	confirmID     int
	deleting      bool
	detail        model.Todo
	detailBody    string
	detailErr     error
	detailLoading bool

	status    string
	statusErr bool
	statusSeq int

	width, height int
}

func newAppModel(ctx context.Context, s Store, opts Options) appModel {
	opts = opts.withDefaults()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "Page %d of %d"
	pager.PerPage = opts.PageSize

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search todos..."
	search.CharLimit = 100

	m := appModel{
		ctx:      ctx,
		store:    s,
		logger:   opts.Logger,
		st:       newStyles(ui.Lookup(opts.Theme)),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		pager:    pager,
		search:   search,
		pageSize: opts.PageSize,
		debounce: opts.SearchDebounce,
		width:    80,
		height:   24,
	}
	m.setSnapshot(s.Snapshot())
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(false))
}

func (m appModel) loadCmd(refresh bool) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		if refresh {
			return loadedMsg{err: s.Refresh(ctx)}
		}
		return loadedMsg{err: s.Load(ctx)}
	}
}

func (m appModel) debounceCmd(seq int) tea.Cmd {
	return tea.Tick(m.debounce, func(time.Time) tea.Msg { return searchTickMsg{seq: seq} })
}

func (m appModel) intentCmd(intent reconcile.Intent, id int, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentDoneMsg{intent: intent, id: id, err: fn(ctx)}
	}
}

func (m appModel) detailCmd(id int) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		t, err := s.Get(ctx, id)
		return detailMsg{todo: t, err: err}
	}
}

func (m *appModel) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = msg
	m.statusErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// setSnapshot replaces the visible state and keeps page and cursor in range.
func (m *appModel) setSnapshot(snap reconcile.Snapshot) {
	m.snap = snap
	m.refilter()
}

func (m *appModel) refilter() {
	m.visible = m.snap.Todos.Search(m.query)
	m.pager.TotalPages = model.PageCount(len(m.visible), m.pageSize)
	if m.pager.Page >= m.pager.TotalPages {
		m.pager.Page = m.pager.TotalPages - 1
	}
	start, end := m.pager.GetSliceBounds(len(m.visible))
	if n := end - start; m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m appModel) page() model.Collection {
	start, end := m.pager.GetSliceBounds(len(m.visible))
	if start >= end {
		return nil
	}
	return m.visible[start:end]
}

func (m appModel) selected() (model.Todo, bool) {
	p := m.page()
	if m.cursor < 0 || m.cursor >= len(p) {
		return model.Todo{}, false
	}
	return p[m.cursor], true
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.setSnapshot(reconcile.Snapshot(msg))
		return m, nil

	case loadedMsg:
		m.setSnapshot(m.store.Snapshot())
		if msg.err != nil && m.snap.Loaded {
			return m, m.setStatus("Failed to load todos: "+msg.err.Error(), true)
		}
		return m, nil

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.query = m.search.Value()
		m.pager.Page = 0
		m.cursor = 0
		m.refilter()
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case intentDoneMsg:
		return m.settle(msg)

	case detailMsg:
		m.detailLoading = false
		m.detail, m.detailErr = msg.todo, msg.err
		if msg.err == nil {
			m.detailBody = renderDetail(msg.todo, m.st.theme, m.width)
		}
		return m, nil

	case tea.KeyMsg:
		if !m.snap.Loaded {
			return m.updateBlocked(msg)
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// updateBlocked handles keys before the first successful load. A failed
// initial load is final for the session; only quitting is possible.
func (m appModel) updateBlocked(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.page())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PrevPage):
		m.pager.PrevPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.NextPage):
		m.pager.NextPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Back):
		if m.query != "" {
			m.search.SetValue("")
			m.searchSeq++
			m.query = ""
			m.refilter()
		}
	case key.Matches(msg, m.keys.Add):
		m.mode = modeForm
		m.form = newForm(nil)
		return m, m.form.focusCmd()
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.mode = modeForm
			m.form = newForm(&t)
			return m, m.form.focusCmd()
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			s := m.store
			return m, m.intentCmd(reconcile.IntentToggle, t.ID, func(ctx context.Context) error {
				_, err := s.Toggle(ctx, t.ID)
				return err
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.confirmID = t.ID
			m.deleting = false
		}
	case key.Matches(msg, m.keys.Open):
		if t, ok := m.selected(); ok {
			m.mode = modeDetail
			m.detail = t
			m.detailErr = nil
			m.detailBody = ""
			m.detailLoading = true
			return m, m.detailCmd(t.ID)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCmd(true)
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.searchSeq++
		m.query = ""
		m.refilter()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	m.searchSeq++
	return m, tea.Batch(cmd, m.debounceCmd(m.searchSeq))
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.saving {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		return m, nil
	case "enter":
		if problem := m.form.validate(); problem != "" {
			m.form.err = problem
			return m, nil
		}
		m.form.saving = true
		s, f, id := m.store, m.form.fields(), m.form.id
		if m.form.editing() {
			return m, m.intentCmd(reconcile.IntentEdit, id, func(ctx context.Context) error {
				_, err := s.Edit(ctx, id, f)
				return err
			})
		}
		return m, m.intentCmd(reconcile.IntentAdd, 0, func(ctx context.Context) error {
			_, err := s.Add(ctx, f)
			return err
		})
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deleting {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch msg.String() {
	case "y", "Y", "enter":
		m.deleting = true
		s, id := m.store, m.confirmID
		return m, m.intentCmd(reconcile.IntentDelete, id, func(ctx context.Context) error {
			return s.Delete(ctx, id)
		})
	case "n", "N", "esc", "q":
		m.mode = modeList
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.mode = modeList
	case key.Matches(msg, m.keys.Edit):
		if m.detailErr == nil && !m.detailLoading {
			t := m.detail
			m.mode = modeForm
			m.form = newForm(&t)
			return m, m.form.focusCmd()
		}
	}
	return m, nil
}

// settle closes whatever dialog issued the intent and reports the outcome.
func (m appModel) settle(msg intentDoneMsg) (tea.Model, tea.Cmd) {
	m.setSnapshot(m.store.Snapshot())
	switch msg.intent {
	case reconcile.IntentAdd, reconcile.IntentEdit:
		if m.mode == modeForm && m.form.saving {
			m.mode = modeList
			m.form.saving = false
		}
	case reconcile.IntentDelete:
		if m.mode == modeConfirmDelete && m.confirmID == msg.id {
			m.mode = modeList
			m.deleting = false
		}
	}
	if msg.err != nil {
		m.logger.Warn("intent failed", "intent", msg.intent, "id", msg.id, "err", msg.err)
		return m, m.setStatus(userMessage(msg.intent, msg.err), true)
	}
	switch msg.intent {
	case reconcile.IntentAdd:
		return m, m.setStatus("Todo added", false)
	case reconcile.IntentEdit:
		return m, m.setStatus("Todo updated", false)
	case reconcile.IntentDelete:
		return m, m.setStatus("Todo deleted", false)
	}
	return m, nil
}

func userMessage(intent reconcile.Intent, err error) string {
	var merr *reconcile.MutationError
	if errors.As(err, &merr) {
		return merr.UserMessage()
	}
	if errors.Is(err, reconcile.ErrNotFound) || errors.Is(err, model.ErrInvalid) {
		return err.Error()
	}
	return fmt.Sprintf("Failed to %s todo: %v", intent.Verb(), err)
}

func (m appModel) View() string {
	switch {
	case !m.snap.Loaded && m.snap.Err != nil:
		return m.viewLoadError()
	case !m.snap.Loaded:
		return m.st.panel.Render(m.spinner.View() + " Loading todos...")
	case m.mode == modeDetail:
		return m.viewDetail()
	}
	return m.viewList()
}

func (m appModel) viewLoadError() string {
	lines := []string{
		m.st.err.Render("Failed to load todos"),
		"",
		"Error: " + m.snap.Err.Error(),
		"",
		m.st.help.Render("q quit"),
	}
	return m.st.panel.Render(strings.Join(lines, "\n"))
}

func (m appModel) header() string {
	done, pending := m.snap.Todos.Stats()
	h := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		m.st.title.Render("Todos"),
		m.st.success.Render(m.st.theme.SymDone), done,
		m.st.pending.Render(m.st.theme.SymPending), pending,
		m.st.accent.Render("Total"), len(m.snap.Todos),
	)
	if m.snap.Loading || len(m.snap.Pending) > 0 {
		h += "  " + m.spinner.View()
	}
	return h
}

func (m appModel) row(t model.Todo, selected bool) string {
	width := max(m.width-12, 10)
	text := ui.Truncate(t.Title, width)
	if t.Completed {
		text = m.st.done.Render(text)
	}
	line := m.st.box(t.Completed) + " " + text
	if t.Provisional {
		line += " " + m.st.muted.Render("(saving)")
	}
	prefix := "  "
	if selected {
		prefix = m.st.selected.Render("> ")
	}
	return prefix + line
}

func (m appModel) viewList() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.searching || m.query != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case len(m.snap.Todos) == 0:
		b.WriteString(m.st.title.Render("No Todos Yet!"))
		b.WriteString("\n")
		b.WriteString(m.st.muted.Render("Press a to add your first todo."))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(m.st.muted.Render(fmt.Sprintf("No todos match %q", m.query)))
		b.WriteString("\n")
	default:
		for i, t := range m.page() {
			b.WriteString(m.row(t, i == m.cursor))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render(m.pager.View()))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString("\n")
		b.WriteString(m.form.view(m.st))
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString("\n")
		b.WriteString(m.viewConfirm())
		b.WriteString("\n")
	}

	if m.status != "" {
		style := m.st.success
		if m.statusErr {
			style = m.st.err
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return m.st.panel.Render(b.String())
}

func (m appModel) viewConfirm() string {
	title := fmt.Sprintf("todo %d", m.confirmID)
	if t, ok := m.snap.Todos.Find(m.confirmID); ok {
		title = fmt.Sprintf("%q", t.Title)
	}
	lines := []string{m.st.err.Render("Delete todo"), "Delete " + title + "?", ""}
	if m.deleting {
		lines = append(lines, m.st.pending.Render("Deleting..."))
	} else {
		lines = append(lines, m.st.help.Render("y confirm • n cancel"))
	}
	return m.st.dialog.Render(strings.Join(lines, "\n"))
}

func (m appModel) viewDetail() string {
	var body string
	switch {
	case m.detailLoading:
		body = m.spinner.View() + " Loading todo..."
	case m.detailErr != nil:
		body = m.st.err.Render(m.detailErr.Error())
	default:
		body = m.detailBody
	}
	hint := m.st.help.Render("esc back • e edit • q back")
	return m.st.panel.Render(lipgloss.JoinVertical(lipgloss.Left, body, hint))
}

// renderDetail renders a todo as markdown. Rendering problems fall back to
// the raw markdown.
func renderDetail(t model.Todo, theme ui.Theme, width int) string {
	status := "Pending"
	if t.Completed {
		status = "Completed"
	}
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", t.Title)
	fmt.Fprintf(&md, "**Status:** %s  \n**ID:** %d  \n**User:** %d\n\n", status, t.ID, t.UserID)
	if t.Provisional {
		md.WriteString("_Not yet confirmed by the server._\n\n")
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		md.WriteString("## Description\n\n")
		md.WriteString(d)
		md.WriteString("\n")
	}

	style := "dark"
	if theme.Mono {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err != nil {
		return md.String()
	}
	out, err := r.Render(md.String())
	if err != nil {
		return md.String()
	}
	return strings.TrimRight(out, "\n")
}
