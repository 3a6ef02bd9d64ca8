package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Len(t, view.items, 4)
	assert.Equal(t, 0, view.selected)
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	assert.Nil(t, NewView(nil).Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
}

func TestView_Update_Navigate(t *testing.T) {
	view := NewView(nil)
	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.selected)

	view.Update(down)
	view.Update(down)
	view.Update(down)
	assert.Equal(t, 3, view.selected, "stops at the last item")

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view.Update(up)
	view.Update(up)
	view.Update(up)
	assert.Equal(t, 0, view.selected, "stops at the first item")
}

func TestView_Update_Enter(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		want     messages.ViewType
	}{
		{"editor", 0, messages.ViewEditor},
		{"settings", 1, messages.ViewSettings},
		{"help", 2, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil)
			view.selected = tt.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			msg, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.View)
		})
	}
}

func TestView_Update_Enter_Quit(t *testing.T) {
	view := NewView(nil)
	view.selected = 3

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Update_Q(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_View_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil).View())
}

func TestView_View_Ready(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	out := view.View()

	assert.Contains(t, out, "Vitae")
	assert.Contains(t, out, "Resume Editor")
	assert.Contains(t, out, "Edit Resume")
	assert.Contains(t, out, "Settings")
	assert.Contains(t, out, "Quit")
	assert.NotContains(t, out, "Editing:")
}

func TestView_View_DocumentTitle(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)
	view.SetDocumentTitle("My Resume")

	assert.Contains(t, view.View(), "Editing: My Resume")
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil)

	view.SetDimensions(120, 40)

	assert.Equal(t, 120, view.width)
	assert.Equal(t, 40, view.height)
	assert.True(t, view.ready)
	assert.Equal(t, 0, view.Selected())
}
