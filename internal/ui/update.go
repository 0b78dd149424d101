package ui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// promptModel is a single-line bubbletea input that quits once the line is submitted.
type promptModel struct {
	input       textinput.Model
	value       string
	submitted   bool
	interrupted bool
	eof         bool
}

func newPromptModel(prompt string) promptModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "Ask the agent, or /help"
	ti.Focus()
	return promptModel{input: ti}
}

// Init initializes the model
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC:
			m.interrupted = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.eof = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt; once finished it leaves the submitted line behind.
func (m promptModel) View() string {
	switch {
	case m.submitted:
		return m.input.Prompt + m.value + "\n"
	case m.interrupted, m.eof:
		return ""
	default:
		return m.input.View()
	}
}

// result converts the final model state into ReadLine's return values.
func (m promptModel) result() (string, error) {
	switch {
	case m.interrupted:
		return "", ErrInterrupted
	case m.eof:
		return "", io.EOF
	default:
		return m.value, nil
	}
}

// promptReader runs a short-lived bubbletea program per line.
type promptReader struct {
	in  io.Reader
	out io.Writer
}

func newPromptReader(in io.Reader, out io.Writer) *promptReader {
	return &promptReader{in: in, out: out}
}

func (r *promptReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	p := tea.NewProgram(newPromptModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(r.in),
		tea.WithOutput(r.out),
	)
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", err
	}
	m, ok := final.(promptModel)
	if !ok {
		return "", io.EOF
	}
	return m.result()
}
