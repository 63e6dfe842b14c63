package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/evanschultz/ticklist/internal/app"
	"github.com/evanschultz/ticklist/internal/domain"
)

// Controller performs the remote task calls the model issues as commands.
type Controller interface {
	Load(context.Context) app.LoadResult
	Create(ctx context.Context, name, description string) app.CreateResult
	ToggleCompleted(ctx context.Context, row domain.ViewTask) app.ToggleResult
	ConfirmEdit(ctx context.Context, row domain.ViewTask) app.ConfirmResult
	Delete(ctx context.Context, id int64) app.DeleteResult
}

// focusZone identifies which part of the screen receives keys.
type focusZone int

const (
	focusList focusZone = iota
	focusName
	focusDescription
)

// Screen rows used for mouse hit testing. They match the order render writes them.
const (
	nameInputLine   = 2
	descInputLine   = 3
	addButtonLine   = 4
	filterLine      = 5
	firstRowLine    = 8
	checkboxColumns = 4
)

const defaultDoubleClick = 400 * time.Millisecond

// Model is the Bubble Tea model for the task list.
type Model struct {
	ctrl  Controller
	state app.State

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	nameInput textinput.Model
	descInput textinput.Model
	editName  textinput.Model
	editDesc  textinput.Model

	focus       focusZone
	editingID   int64
	editField   int
	cursor      int
	pending     int
	status      string
	loading     bool
	hideOnLoad  bool
	showDetails bool
	details     *markdownRenderer

	lastClickID int64
	lastClickAt time.Time
	doubleClick time.Duration

	now      func() time.Time
	copyText func(string) error

	ready  bool
	width  int
	height int
}

// NewModel constructs a model that drives ctrl.
func NewModel(ctrl Controller, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	s := spinner.New()
	s.Spinner = spinner.Dot
	m := Model{
		ctrl:        ctrl,
		keys:        newKeyMap(),
		help:        h,
		spinner:     s,
		nameInput:   newFormInput("name: ", "task name", domain.MaxNameRunes),
		descInput:   newFormInput("desc: ", "description", domain.MaxDescriptionRunes),
		editName:    newFormInput("", "name", domain.MaxNameRunes),
		editDesc:    newFormInput("", "description", domain.MaxDescriptionRunes),
		focus:       focusList,
		status:      "loading...",
		loading:     true,
		pending:     1,
		details:     &markdownRenderer{},
		doubleClick: defaultDoubleClick,
		now:         time.Now,
		copyText:    clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// newFormInput builds a text input sized for limit runes. Length is checked by
// app.State, so the input itself is not capped.
func newFormInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.SetWidth(limit + 1)
	return in
}

// Init starts the initial load. NewModel already counts it as pending.
func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	load := func() tea.Msg {
		return ctrl.Load(context.Background())
	}
	return tea.Batch(load, m.spinner.Tick)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		return m, nil

	case app.LoadResult:
		m = m.finishCall()
		m.loading = false
		m.state = m.state.ApplyLoad(msg)
		if msg.Err == nil {
			m.status = fmt.Sprintf("%d tasks", len(m.state.Tasks))
		} else {
			m.status = ""
		}
		return m.afterApply(), nil

	case app.CreateResult:
		m = m.finishCall()
		m.state = m.state.ApplyCreate(msg)
		if msg.Err == nil {
			m.nameInput.SetValue(m.state.DraftName)
			m.descInput.SetValue(m.state.DraftDescription)
			m.status = "added " + msg.Task.Name
		}
		return m.afterApply(), nil

	case app.ToggleResult:
		m = m.finishCall()
		m.state = m.state.ApplyToggle(msg)
		return m.afterApply(), nil

	case app.ConfirmResult:
		m = m.finishCall()
		m.state = m.state.ApplyConfirm(msg)
		if msg.Err == nil {
			m.status = "saved " + msg.Task.Name
		}
		return m.afterApply(), nil

	case app.DeleteResult:
		m = m.finishCall()
		m.state = m.state.ApplyDelete(msg)
		if msg.Err == nil {
			m.status = "deleted"
		}
		return m.afterApply(), nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	default:
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	content := "loading..."
	if m.ready {
		content = m.render()
	}
	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// startCall runs call off the update loop and starts the spinner for the first
// in-flight call.
func (m Model) startCall(call func(context.Context) tea.Msg) (Model, tea.Cmd) {
	m.pending++
	cmd := func() tea.Msg {
		return call(context.Background())
	}
	if m.pending == 1 {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) finishCall() Model {
	if m.pending > 0 {
		m.pending--
	}
	return m
}

// afterApply reconciles cursor and editor with the state after a result lands.
func (m Model) afterApply() Model {
	if m.hideOnLoad && len(m.state.Tasks) > 0 {
		m.state = m.state.SetHideCompleted(true)
		m.hideOnLoad = false
	}
	if m.editingID != 0 {
		row, ok := m.state.Tasks.Find(m.editingID)
		if !ok || !row.IsEditing {
			m = m.stopEditing()
		}
	}
	return m.clampCursor()
}

func (m Model) clampCursor() Model {
	n := len(m.state.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m Model) selectedRow() (domain.ViewTask, bool) {
	visible := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.ViewTask{}, false
	}
	return visible[m.cursor], true
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.forceQuit) {
		return m, tea.Quit
	}
	if m.editingID != 0 {
		return m.handleEditKey(msg)
	}
	if m.focus != focusList {
		return m.handleFormKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.nextFocus):
		return m.setFocus(focusName), nil
	case key.Matches(msg, m.keys.prevFocus):
		return m.setFocus(focusDescription), nil
	case key.Matches(msg, m.keys.moveUp):
		m.cursor--
		return m.clampCursor(), nil
	case key.Matches(msg, m.keys.moveDown):
		m.cursor++
		return m.clampCursor(), nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		ctrl := m.ctrl
		return m.startCall(func(ctx context.Context) tea.Msg {
			return ctrl.Load(ctx)
		})
	case key.Matches(msg, m.keys.hideDone):
		m.state = m.state.SetHideCompleted(!m.state.HideCompleted)
		return m.clampCursor(), nil
	case key.Matches(msg, m.keys.details):
		m.showDetails = !m.showDetails
		return m, nil
	}

	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.toggleDone):
		return m.toggleCompleted(row)
	case key.Matches(msg, m.keys.toggleEdit):
		return m.toggleEdit(row.ID)
	case key.Matches(msg, m.keys.deleteTask):
		ctrl := m.ctrl
		return m.startCall(func(ctx context.Context) tea.Msg {
			return ctrl.Delete(ctx, row.ID)
		})
	case key.Matches(msg, m.keys.copyTask):
		if err := m.copyText(rowClipboardText(row)); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied " + row.Name
		return m, nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.nextFocus):
		return m.setFocus(nextFocus(m.focus)), nil
	case key.Matches(msg, m.keys.prevFocus):
		return m.setFocus(prevFocus(m.focus)), nil
	case key.Matches(msg, m.keys.cancel):
		return m.setFocus(focusList), nil
	case key.Matches(msg, m.keys.submitCreate):
		return m.submitCreate()
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		before := m.nameInput.Value()
		m.nameInput, cmd = m.nameInput.Update(msg)
		next, err := m.state.SetDraftName(m.nameInput.Value())
		if err != nil {
			m.nameInput.SetValue(before)
			m.status = rejectionStatus(err)
			return m, nil
		}
		m.state = next
		return m, cmd
	}
	before := m.descInput.Value()
	m.descInput, cmd = m.descInput.Update(msg)
	next, err := m.state.SetDraftDescription(m.descInput.Value())
	if err != nil {
		m.descInput.SetValue(before)
		m.status = rejectionStatus(err)
		return m, nil
	}
	m.state = next
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	id := m.editingID
	switch {
	case key.Matches(msg, m.keys.switchField):
		return m.setEditField(1 - m.editField), nil
	case key.Matches(msg, m.keys.confirmEdit):
		row, ok := m.state.Tasks.Find(id)
		if !ok {
			return m.stopEditing(), nil
		}
		ctrl := m.ctrl
		return m.startCall(func(ctx context.Context) tea.Msg {
			return ctrl.ConfirmEdit(ctx, row)
		})
	case key.Matches(msg, m.keys.cancelEdit):
		if next, err := m.state.CancelEdit(id); err == nil {
			m.state = next
		}
		m.status = ""
		return m.stopEditing(), nil
	}

	var cmd tea.Cmd
	if m.editField == 0 {
		before := m.editName.Value()
		m.editName, cmd = m.editName.Update(msg)
		next, err := m.state.EditName(id, m.editName.Value())
		if err != nil {
			m.editName.SetValue(before)
			m.status = rejectionStatus(err)
			return m, nil
		}
		m.state = next
		return m, cmd
	}
	before := m.editDesc.Value()
	m.editDesc, cmd = m.editDesc.Update(msg)
	next, err := m.state.EditDescription(id, m.editDesc.Value())
	if err != nil {
		m.editDesc.SetValue(before)
		m.status = rejectionStatus(err)
		return m, nil
	}
	m.state = next
	return m, cmd
}

func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	switch msg.Y {
	case nameInputLine:
		if m.editingID == 0 {
			m = m.setFocus(focusName)
		}
		return m, nil
	case descInputLine:
		if m.editingID == 0 {
			m = m.setFocus(focusDescription)
		}
		return m, nil
	case addButtonLine:
		return m.submitCreate()
	case filterLine:
		m.state = m.state.SetHideCompleted(!m.state.HideCompleted)
		return m.clampCursor(), nil
	}

	visible := m.state.Visible()
	idx := msg.Y - firstRowLine
	if idx < 0 || idx >= len(visible) {
		return m, nil
	}
	row := visible[idx]
	m.cursor = idx
	if m.editingID == 0 {
		m = m.setFocus(focusList)
	}
	if msg.X < checkboxColumns {
		m.lastClickID = 0
		return m.toggleCompleted(row)
	}
	now := m.now()
	if m.lastClickID == row.ID && now.Sub(m.lastClickAt) <= m.doubleClick {
		m.lastClickID = 0
		m.lastClickAt = time.Time{}
		return m.toggleEdit(row.ID)
	}
	m.lastClickID = row.ID
	m.lastClickAt = now
	return m, nil
}

func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	in, ok := m.state.PendingCreate()
	if !ok {
		return m, nil
	}
	ctrl := m.ctrl
	return m.startCall(func(ctx context.Context) tea.Msg {
		return ctrl.Create(ctx, in.Name, in.Description)
	})
}

func (m Model) toggleCompleted(row domain.ViewTask) (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	return m.startCall(func(ctx context.Context) tea.Msg {
		return ctrl.ToggleCompleted(ctx, row)
	})
}

// toggleEdit flips edit mode for id and attaches the row editor when it turns on.
func (m Model) toggleEdit(id int64) (tea.Model, tea.Cmd) {
	next, err := m.state.ToggleEdit(id)
	if err != nil {
		return m, nil
	}
	m.state = next
	row, _ := m.state.Tasks.Find(id)
	if row.IsEditing {
		return m.startEditing(row), nil
	}
	if m.editingID == id {
		m = m.stopEditing()
	}
	return m, nil
}

func (m Model) startEditing(row domain.ViewTask) Model {
	m = m.setFocus(focusList)
	m.editingID = row.ID
	m.editName.SetValue(row.Name)
	m.editDesc.SetValue(row.Description)
	for idx, v := range m.state.Visible() {
		if v.ID == row.ID {
			m.cursor = idx
			break
		}
	}
	m.status = "editing " + row.Name
	return m.setEditField(0)
}

func (m Model) stopEditing() Model {
	m.editingID = 0
	m.editField = 0
	m.editName.Blur()
	m.editDesc.Blur()
	return m
}

func (m Model) setEditField(field int) Model {
	m.editField = field
	if field == 0 {
		m.editName.Focus()
		m.editDesc.Blur()
		return m
	}
	m.editDesc.Focus()
	m.editName.Blur()
	return m
}

func (m Model) setFocus(zone focusZone) Model {
	m.focus = zone
	m.nameInput.Blur()
	m.descInput.Blur()
	switch zone {
	case focusName:
		m.nameInput.Focus()
	case focusDescription:
		m.descInput.Focus()
	}
	return m
}

func nextFocus(z focusZone) focusZone {
	switch z {
	case focusName:
		return focusDescription
	case focusDescription:
		return focusList
	default:
		return focusName
	}
}

func prevFocus(z focusZone) focusZone {
	switch z {
	case focusName:
		return focusList
	case focusDescription:
		return focusName
	default:
		return focusDescription
	}
}

// rejectionStatus words a local validation error for the status line.
func rejectionStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrNameTooLong):
		return fmt.Sprintf("name is limited to %d characters", domain.MaxNameRunes)
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return fmt.Sprintf("description is limited to %d characters", domain.MaxDescriptionRunes)
	default:
		return err.Error()
	}
}

func rowClipboardText(row domain.ViewTask) string {
	if strings.TrimSpace(row.Description) == "" {
		return row.Name
	}
	return row.Name + ": " + row.Description
}

// render draws the full screen. Line positions must stay in step with the
// hit-testing constants above.
func (m Model) render() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	helpStyle := lipgloss.NewStyle().Foreground(muted)
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)
	buttonStyle := lipgloss.NewStyle().Foreground(accent)
	if m.focus == focusList && m.editingID == 0 {
		buttonStyle = buttonStyle.Faint(true)
	}

	title := titleStyle.Render("ticklist")
	if m.pending > 0 {
		title += "  " + m.spinner.View() + statusStyle.Render(fmt.Sprintf(" %d pending", m.pending))
	}

	hideBox := "[ ]"
	if m.state.HideCompleted {
		hideBox = "[x]"
	}

	lines := []string{
		title,
		"",
		m.nameInput.View(),
		m.descInput.View(),
		buttonStyle.Render("[add]"),
		helpStyle.Render(hideBox + " hide completed"),
		"",
		headerStyle.Render(fmt.Sprintf("    %-*s  %s", domain.MaxNameRunes, "name", "description")),
	}

	visible := m.state.Visible()
	switch {
	case len(visible) == 0 && m.loading:
		lines = append(lines, helpStyle.Render("loading..."))
	case len(visible) == 0 && len(m.state.Tasks) > 0:
		lines = append(lines, helpStyle.Render("all tasks completed"))
	case len(visible) == 0:
		lines = append(lines, helpStyle.Render("no tasks yet"))
	}
	for idx, row := range visible {
		line := m.renderRow(row)
		switch {
		case idx == m.cursor && m.focus == focusList:
			line = selectedStyle.Render(line)
		case row.IsCompleted:
			line = doneStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if m.showDetails {
		if row, ok := m.selectedRow(); ok {
			lines = append(lines, "", m.details.render(taskDetailsMarkdown(row), max(0, m.width-4)))
		}
	}

	lines = append(lines, "", statusStyle.Render(m.status))
	if m.editingID != 0 {
		lines = append(lines, m.help.View(editHelp{keys: m.keys}))
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row domain.ViewTask) string {
	box := "[ ]"
	if row.IsCompleted {
		box = "[x]"
	}
	if row.ID == m.editingID {
		return box + " " + m.editName.View() + "  " + m.editDesc.View()
	}
	line := fmt.Sprintf("%s %-*s  %s", box, domain.MaxNameRunes, row.Name, row.Description)
	if row.IsEditing {
		line += " ✎"
	}
	return line
}
