// ABOUTME: Interactive TUI wizard for connecting the diary to a hosted entries table.
// ABOUTME: 2-step bubbletea model collecting the project URL and anon key, then validating them.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/diary/internal/storage"
)

// Step represents the current wizard step.
type Step int

const (
	StepURL Step = iota
	StepAnonKey
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn is the function signature for connection validation.
type ValidateFn func(ctx context.Context, apiURL, anonKey, table string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It MUST be a pointer field so value-receiver methods (required by tea.Model)
// can store the cancel func and have it visible to all copies of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [2]textinput.Model
	table         string
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(apiURL, anonKey, table string) SetupModel {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://your-project.supabase.co"
	urlInput.Focus()
	urlInput.Width = 50
	if apiURL != "" {
		urlInput.SetValue(apiURL)
	}

	keyInput := textinput.New()
	keyInput.Placeholder = "your-anon-key"
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.Width = 50
	if anonKey != "" {
		keyInput.SetValue(anonKey)
	}

	if table == "" {
		table = storage.DefaultTable
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepURL,
		inputs:     [2]textinput.Model{urlInput, keyInput},
		table:      table,
		spinner:    s,
		validateFn: ValidateConnection,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepURL, StepAnonKey:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)

		if m.step == StepURL {
			val := storage.NormalizeURL(m.inputs[0].Value())
			if val == "" {
				return m, nil
			}
			m.inputs[0].SetValue(val)
		}
		if m.step == StepAnonKey && strings.TrimSpace(m.inputs[1].Value()) == "" {
			return m, nil
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepURL:
			m.step = StepAnonKey
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepAnonKey:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	apiURL := m.inputs[0].Value()
	anonKey := strings.TrimSpace(m.inputs[1].Value())
	table := m.table
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, apiURL, anonKey, table)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("   My Personal Diary - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Connect the diary to your hosted entries table.\n\n")

	switch m.step {
	case StepURL:
		b.WriteString(stepStyle.Render("Step 1 of 2: Project URL"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepAnonKey:
		b.WriteString(fmt.Sprintf("  URL: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 2: Anon key"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  URL:   %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Table: %s\n", m.table))
		b.WriteString(fmt.Sprintf("  Key:   %s\n\n", strings.Repeat("*", len(m.inputs[1].Value()))))
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating connection...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Connected!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() (apiURL, anonKey string) {
	return m.inputs[0].Value(), strings.TrimSpace(m.inputs[1].Value())
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
