// Package tui is the terminal shell around the dashboard: it forwards user
// input to the form controller and redraws whenever the state store changes.
package tui

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finance-dashboard/internal/form"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/prefs"
	"finance-dashboard/internal/state"
	"finance-dashboard/internal/syncloop"
	"finance-dashboard/internal/view"
)

// Loop is the part of the sync loop the shell drives.
type Loop interface {
	Start(ctx context.Context) error
	Close()
}

type Chart interface {
	View() string
}

type Deps struct {
	Store    *state.Store
	Form     *form.Controller
	Loop     Loop
	Chart    Chart
	Notifier *Notifier
	Prefs    prefs.Store
	Theme    prefs.Theme
	// RefreshEvery is the polling period shown in the header.
	RefreshEvery time.Duration
}

type focus int

const (
	focusDate focus = iota
	focusDescription
	focusAmount
	focusType
	focusCategory
	focusNotes
	focusList
	focusCount
)

var focusFields = map[focus]form.Field{
	focusDate:        form.FieldDate,
	focusDescription: form.FieldDescription,
	focusAmount:      form.FieldAmount,
	focusType:        form.FieldType,
	focusCategory:    form.FieldCategoryID,
	focusNotes:       form.FieldNotes,
}

type (
	storeChangedMsg struct{}
	loopStartedMsg  struct{ err error }
	submitDoneMsg   struct{ err error }
	deleteDoneMsg   struct{ err error }
)

type Model struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	changes     chan struct{}
	unsubscribe func()
	closeOnce   sync.Once

	keys   keyMap
	help   help.Model
	styles view.Styles
	theme  prefs.Theme

	inputs     map[form.Field]*textinput.Model
	focus      focus
	list       viewport.Model
	selected   int
	snap       state.Snapshot
	submitting bool
	modal      *prompt

	width, height int
}

func New(deps Deps) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   deps.Theme,
		styles:  view.StylesFor(deps.Theme),
		list:    viewport.New(100, 10),
		width:   100,
		height:  40,
	}

	m.inputs = map[form.Field]*textinput.Model{
		form.FieldDate:        newInput("YYYY-MM-DD", 10),
		form.FieldDescription: newInput("e.g., Grocery shopping", 80),
		form.FieldAmount:      newInput("0.00", 16),
		form.FieldNotes:       newInput("optional", 120),
	}
	m.snap = deps.Store.Snapshot()
	m.syncInputs()
	m.inputs[form.FieldDate].Focus()
	m.resizeList()
	m.refreshList()

	m.unsubscribe = deps.Store.Subscribe(m.notifyChange)
	return m
}

func newInput(placeholder string, limit int) *textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	return &in
}

// notifyChange runs on whatever goroutine mutated the store. Pending
// notifications coalesce into one.
func (m *Model) notifyChange() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return storeChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.startLoop(),
		m.waitForChange(),
		m.deps.Notifier.wait(),
		textinput.Blink,
	)
}

func (m *Model) startLoop() tea.Cmd {
	return func() tea.Msg {
		return loopStartedMsg{err: m.deps.Loop.Start(m.ctx)}
	}
}

// Close releases everything the shell started. It is safe to call more
// than once.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.unsubscribe()
		m.deps.Notifier.Close()
		m.deps.Loop.Close()
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeList()
		m.refreshList()
		return m, nil

	case storeChangedMsg:
		m.deps.Form.SyncCategories()
		m.snap = m.deps.Store.Snapshot()
		m.syncInputs()
		m.clampSelection()
		m.refreshList()
		return m, m.waitForChange()

	case promptMsg:
		// the next dialog is only fetched once this one is answered
		p := prompt(msg)
		m.modal = &p
		return m, nil

	case loopStartedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			log.Printf("sync loop start: %v", msg.err)
		}
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		return m, nil

	case deleteDoneMsg:
		return m, nil

	case tea.KeyMsg:
		if m.modal != nil {
			return m, m.answerModal(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) answerModal(msg tea.KeyMsg) tea.Cmd {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.modal.reply <- false
		m.modal = nil
		return tea.Quit
	case m.modal.confirm && key.Matches(msg, m.keys.Yes):
		answer = true
	case m.modal.confirm && key.Matches(msg, m.keys.No):
		answer = false
	case !m.modal.confirm && (key.Matches(msg, m.keys.Yes) || key.Matches(msg, m.keys.No)):
		answer = true
	default:
		return nil
	}
	m.modal.reply <- answer
	m.modal = nil
	return m.deps.Notifier.wait()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return tea.Quit
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.ToggleType):
		m.toggleType()
		return nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	switch m.focus {
	case focusType:
		switch {
		case key.Matches(msg, m.keys.Left, m.keys.Right):
			m.toggleType()
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		return nil
	case focusCategory:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycleCategory(-1)
		case key.Matches(msg, m.keys.Right):
			m.cycleCategory(1)
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		return nil
	}

	return m.updateFocusedInput(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Delete):
		return m.requestDelete()
	}
	return nil
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	field, ok := focusFields[m.focus]
	if !ok {
		return nil
	}
	in, ok := m.inputs[field]
	if !ok {
		return nil
	}

	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if in.Value() != before {
		if err := m.deps.Form.SetField(field, in.Value()); err != nil {
			log.Printf("set %s: %v", field, err)
		}
	}
	return cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	if field, ok := focusFields[m.focus]; ok {
		if in, ok := m.inputs[field]; ok {
			in.Blur()
		}
	}
	m.focus = f
	m.refreshList()
	if field, ok := focusFields[f]; ok {
		if in, ok := m.inputs[field]; ok {
			return in.Focus()
		}
	}
	return nil
}

func (m *Model) toggleType() {
	next := models.Income
	if m.deps.Store.Draft().Type == models.Income {
		next = models.Expense
	}
	m.deps.Form.SetType(next)
}

func (m *Model) cycleCategory(delta int) {
	filtered := m.deps.Form.Filtered()
	if len(filtered) == 0 {
		return
	}
	current := m.deps.Store.Draft().CategoryID
	idx := 0
	for i, c := range filtered {
		if strconv.Itoa(c.ID) == current {
			idx = (i + delta + len(filtered)) % len(filtered)
			break
		}
	}
	if err := m.deps.Form.SetField(form.FieldCategoryID, strconv.Itoa(filtered[idx].ID)); err != nil {
		log.Printf("set category: %v", err)
	}
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	ctrl, ctx := m.deps.Form, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx)}
	}
}

func (m *Model) requestDelete() tea.Cmd {
	if m.selected < 0 || m.selected >= len(m.snap.Transactions) {
		return nil
	}
	id := m.snap.Transactions[m.selected].ID
	ctrl, ctx := m.deps.Form, m.ctx
	return func() tea.Msg {
		return deleteDoneMsg{err: ctrl.RequestDelete(ctx, id)}
	}
}

func (m *Model) toggleTheme() tea.Cmd {
	m.theme = m.theme.Toggle()
	m.styles = view.StylesFor(m.theme)
	m.refreshList()

	store, theme, ctx := m.deps.Prefs, m.theme, m.ctx
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.Save(ctx, theme); err != nil {
			log.Printf("prefs: save theme: %v", err)
		}
		return nil
	}
}

func (m *Model) syncInputs() {
	d := m.snap.Draft
	values := map[form.Field]string{
		form.FieldDate:        d.Date,
		form.FieldDescription: d.Description,
		form.FieldAmount:      d.Amount,
		form.FieldNotes:       d.Notes,
	}
	for field, value := range values {
		if in := m.inputs[field]; in.Value() != value {
			in.SetValue(value)
		}
	}
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
	m.refreshList()
}

func (m *Model) clampSelection() {
	n := len(m.snap.Transactions)
	switch {
	case n == 0:
		m.selected = 0
	case m.selected >= n:
		m.selected = n - 1
	case m.selected < 0:
		m.selected = 0
	}
}

// rowHeight is the number of lines one transaction takes in the list.
const rowHeight = 2

func (m *Model) refreshEvery() time.Duration {
	if m.deps.RefreshEvery > 0 {
		return m.deps.RefreshEvery
	}
	return syncloop.DefaultPeriod
}

func (m *Model) resizeList() {
	m.list.Width = m.width
	m.list.Height = max(rowHeight, m.height-lipgloss.Height(m.top())-4)
}

func (m *Model) refreshList() {
	selected := -1
	if m.focus == focusList {
		selected = m.selected
	}
	m.list.SetContent(view.TransactionList(m.snap.Transactions, selected, m.styles, m.width-4))

	top := m.selected * rowHeight
	switch {
	case top < m.list.YOffset:
		m.list.SetYOffset(top)
	case top+rowHeight > m.list.YOffset+m.list.Height:
		m.list.SetYOffset(top + rowHeight - m.list.Height)
	}
}

func (m *Model) top() string {
	half := m.width/2 - 1
	fs := view.FormState{
		Draft:      m.snap.Draft,
		Categories: m.deps.Form.Filtered(),
		Busy:       m.submitting || m.deps.Form.Busy(),
		Inputs:     map[form.Field]string{},
	}
	if field, ok := focusFields[m.focus]; ok {
		fs.Focus = field
	}
	for field, in := range m.inputs {
		fs.Inputs[field] = in.View()
	}

	chart := ""
	if m.deps.Chart != nil {
		chart = m.deps.Chart.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		view.Header(m.styles, m.refreshEvery(), m.width),
		view.SummaryCards(m.snap.Summary, m.styles, m.width),
		lipgloss.JoinHorizontal(lipgloss.Top,
			view.Form(fs, m.styles, half),
			" ",
			view.Chart(chart, m.snap.Loading, m.styles, half),
		),
	)
}

func (m *Model) View() string {
	if m.modal != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			view.Modal(m.modal.text, m.modal.confirm, m.styles))
	}

	title := m.styles.CardTitle.Render("Recent Transactions")
	if m.focus == focusList {
		title = m.styles.Toggle.Render("Recent Transactions")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.top(),
		title,
		m.list.View(),
		m.help.View(m.keys),
	)
}
