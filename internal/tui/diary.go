// ABOUTME: Bubbletea screen for writing, listing, and deleting diary entries.
// ABOUTME: Renders controller state and runs store work as tea commands.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/diary/internal/diary"
	"github.com/2389-research/diary/internal/models"
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusMood
	focusContent
	focusList
	focusCount
)

type entriesLoadedMsg struct {
	outcome diary.Outcome
}

type entrySubmittedMsg struct {
	outcome diary.Outcome
}

type entryDeletedMsg struct {
	id      string
	outcome diary.Outcome
}

// DiaryModel is the bubbletea model for the main diary screen.
type DiaryModel struct {
	ctrl   *diary.Controller
	ctx    context.Context
	cancel context.CancelFunc

	title   textinput.Model
	mood    textinput.Model
	content textarea.Model
	spinner spinner.Model

	focus      focusArea
	cursor     int
	confirming string
	submitting bool
	formErr    string
	quitting   bool
}

// NewDiaryModel creates the screen over ctrl. Store calls made by the screen
// are cancelled when the user quits.
func NewDiaryModel(ctrl *diary.Controller) DiaryModel {
	ctx, cancel := context.WithCancel(context.Background())

	title := textinput.New()
	title.Placeholder = "Give your day a title"
	title.CharLimit = 200
	title.Width = 50
	title.Focus()

	mood := textinput.New()
	mood.Placeholder = "How are you feeling?"
	mood.CharLimit = 100
	mood.Width = 50

	content := textarea.New()
	content.Placeholder = "Write about your day..."
	content.ShowLineNumbers = false
	content.SetWidth(60)
	content.SetHeight(5)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return DiaryModel{
		ctrl:    ctrl,
		ctx:     ctx,
		cancel:  cancel,
		title:   title,
		mood:    mood,
		content: content,
		spinner: s,
		focus:   focusTitle,
	}
}

// Init implements tea.Model.
func (m DiaryModel) Init() tea.Cmd {
	return tea.Batch(m.mountCmd(), m.spinner.Tick, textinput.Blink)
}

func (m DiaryModel) mountCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return entriesLoadedMsg{outcome: ctrl.Mount(ctx)}
	}
}

func (m DiaryModel) refreshCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return entriesLoadedMsg{outcome: ctrl.Refresh(ctx)}
	}
}

func (m DiaryModel) submitCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return entrySubmittedMsg{outcome: ctrl.Submit(ctx)}
	}
}

func (m DiaryModel) deleteCmd(id string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return entryDeletedMsg{id: id, outcome: ctrl.Delete(ctx, id)}
	}
}

// Update implements tea.Model.
func (m DiaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		if w := msg.Width - 4; w > 20 {
			m.content.SetWidth(w)
			m.title.Width = w - 10
			m.mood.Width = w - 10
		}
		return m, nil

	case entriesLoadedMsg:
		m.clampCursor()
		return m, nil

	case entrySubmittedMsg:
		m.submitting = false
		if msg.outcome.OK() {
			form := m.ctrl.Form()
			m.title.SetValue(form.Title)
			m.mood.SetValue(form.Mood)
			m.content.SetValue(form.Content)
			m.formErr = ""
		}
		m.clampCursor()
		return m, nil

	case entryDeletedMsg:
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.forwardToInput(msg)
}

func (m DiaryModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming != "" {
		return m.updateConfirm(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+s":
		return m.submit()
	}

	if m.focus == focusList {
		return m.updateList(msg)
	}
	return m.forwardToInput(msg)
}

func (m DiaryModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.ctrl.Snapshot().Entries
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case "r":
		return m, m.refreshCmd()
	case "d":
		if m.cursor < len(entries) {
			id := entries[m.cursor].ID
			if !m.ctrl.IsDeleting(id) {
				m.confirming = id
			}
		}
	case "q":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m DiaryModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirming
	switch msg.String() {
	case "y", "Y":
		m.confirming = ""
		return m, m.deleteCmd(id)
	case "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	default:
		m.confirming = ""
		return m, nil
	}
}

func (m DiaryModel) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	form := diary.Form{
		Title:   m.title.Value(),
		Mood:    m.mood.Value(),
		Content: m.content.Value(),
	}
	if err := ValidateForm(form.Title, form.Mood, form.Content); err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	m.submitting = true
	m.ctrl.SetForm(form)
	return m, m.submitCmd()
}

func (m DiaryModel) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.title.Blur()
	m.mood.Blur()
	m.content.Blur()

	var cmd tea.Cmd
	switch f {
	case focusTitle:
		cmd = m.title.Focus()
	case focusMood:
		cmd = m.mood.Focus()
	case focusContent:
		cmd = m.content.Focus()
	}
	return m, cmd
}

func (m DiaryModel) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusMood:
		m.mood, cmd = m.mood.Update(msg)
	case focusContent:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m *DiaryModel) clampCursor() {
	n := len(m.ctrl.Snapshot().Entries)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m DiaryModel) View() string {
	if m.quitting {
		return ""
	}
	state := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("   My Personal Diary"))
	b.WriteString("\n\n")

	b.WriteString(m.viewForm())
	b.WriteString("\n")
	b.WriteString(m.viewEntries(state))
	b.WriteString("\n")

	if m.confirming != "" {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete entry %q? [y/N]", entryTitle(state.Entries, m.confirming))))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("tab: next field  ctrl+s: save  ↑/↓: select  d: delete  r: refresh  esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m DiaryModel) viewForm() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("New entry"))
	b.WriteString("\n")
	b.WriteString(m.label("Title", focusTitle))
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(m.label("Mood", focusMood))
	b.WriteString(m.mood.View())
	b.WriteString("\n")
	b.WriteString(m.label("Entry", focusContent))
	b.WriteString("\n")
	b.WriteString(m.content.View())
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View())
		b.WriteString(" Saving...")
	case ValidateForm(m.title.Value(), m.mood.Value(), m.content.Value()) != nil:
		b.WriteString(disabledStyle.Render("[ Save entry ]"))
	default:
		b.WriteString(buttonStyle.Render("Save entry"))
	}
	b.WriteString("\n")
	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr))
		b.WriteString("\n")
	}
	return b.String()
}

func (m DiaryModel) label(name string, f focusArea) string {
	text := fmt.Sprintf("%-7s", name+":")
	if m.focus == f {
		return focusStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m DiaryModel) viewEntries(state diary.State) string {
	var b strings.Builder
	heading := "Your entries"
	if m.focus == focusList {
		heading = focusStyle.Render("▸ ") + headingStyle.Render(heading)
	} else {
		heading = headingStyle.Render(heading)
	}
	b.WriteString(heading)
	b.WriteString("\n")

	if state.InitialLoading {
		b.WriteString("Loading entries...\n")
		return b.String()
	}
	if len(state.Entries) == 0 {
		b.WriteString(stepStyle.Render("No entries yet. Write your first one above."))
		b.WriteString("\n")
		return b.String()
	}

	for i, e := range state.Entries {
		b.WriteString(m.viewEntry(e, state.Deleting[e.ID], m.focus == focusList && i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m DiaryModel) viewEntry(e *models.DiaryEntry, deleting, selected bool) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(e.Title))
	b.WriteString("  ")
	b.WriteString(dateStyle.Render(models.FormatDate(e.CreatedAt)))
	b.WriteString("\n")
	b.WriteString(moodStyle.Render("Mood: " + e.Mood))
	b.WriteString("\n")
	b.WriteString(e.Content)
	b.WriteString("\n")
	if deleting {
		b.WriteString(m.spinner.View())
		b.WriteString(" Deleting...")
	} else {
		b.WriteString(hintStyle.Render("[d]elete"))
	}

	if selected {
		return selectedStyle.Render(b.String())
	}
	return cardStyle.Render(b.String())
}

func entryTitle(entries []*models.DiaryEntry, id string) string {
	for _, e := range entries {
		if e.ID == id {
			return e.Title
		}
	}
	return id
}
