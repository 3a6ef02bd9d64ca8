// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// MoveUp moves the selected section up.
	MoveUp key.Binding

	// MoveDown moves the selected section down.
	MoveDown key.Binding

	// Select opens the selected item.
	Select key.Binding

	// ToggleHidden hides or shows the selected section.
	ToggleHidden key.Binding

	// Template switches to the next template.
	Template key.Binding

	// Reset replaces the document with the sample.
	Reset key.Binding

	// Export writes a PDF.
	Export key.Binding

	// Edit edits the selected field.
	Edit key.Binding

	// Add appends a block.
	Add key.Binding

	// Delete removes the selected block.
	Delete key.Binding

	// Generate drafts text for the selected block.
	Generate key.Binding

	// ScrollUp and ScrollDown move the preview.
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		ToggleHidden: key.NewBinding(
			key.WithKeys("h", " "),
			key.WithHelp("h", "hide/show"),
		),
		Template: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "template"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset"),
		),
		Export: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "export pdf"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add block"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete block"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll preview"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll preview"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// EditorHelp returns keybindings for the editor view.
func (k *KeyMap) EditorHelp() []key.Binding {
	return []key.Binding{k.Select, k.MoveUp, k.MoveDown, k.ToggleHidden, k.Template, k.Export}
}

// SectionHelp returns keybindings for the section view.
func (k *KeyMap) SectionHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Add, k.Delete, k.Generate, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.MoveUp, k.MoveDown, k.ToggleHidden, k.Template, k.Reset, k.Export},
		{k.Edit, k.Add, k.Delete, k.Generate},
		{k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
