// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
)

// FieldInput wraps a bubbles textinput for editing one block field.
type FieldInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewFieldInput creates a new field input component.
func NewFieldInput(s *styles.Styles) *FieldInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 1024
	ti.Width = 50

	return &FieldInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the field input.
func (f *FieldInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *FieldInput) Update(msg tea.Msg) (*FieldInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the labelled input.
func (f *FieldInput) View() string {
	label := f.styles.Title.Render(f.label + ": ")
	input := f.styles.InputField.Render(f.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Start focuses the input on a field with its current value.
func (f *FieldInput) Start(label, value string) tea.Cmd {
	f.label = label
	f.textinput.SetValue(value)
	f.textinput.CursorEnd()
	return f.textinput.Focus()
}

// Label returns the field being edited.
func (f *FieldInput) Label() string {
	return f.label
}

// Value returns the current input value.
func (f *FieldInput) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *FieldInput) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *FieldInput) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *FieldInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *FieldInput) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the input.
func (f *FieldInput) SetWidth(width int) {
	f.width = width
	// Account for label and padding
	inputWidth := width - len(f.label) - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}

// Width returns the current width.
func (f *FieldInput) Width() int {
	return f.width
}

// Reset clears and blurs the input.
func (f *FieldInput) Reset() {
	f.textinput.Reset()
	f.textinput.Blur()
	f.label = ""
}
