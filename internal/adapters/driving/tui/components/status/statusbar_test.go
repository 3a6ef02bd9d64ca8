package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View_States(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"ready", StateReady, "", "Ready"},
		{"busy default", StateBusy, "", "Working..."},
		{"busy message", StateBusy, "Generating", "Generating..."},
		{"error", StateError, "boom", "Error: boom"},
		{"error no message", StateError, "", "Error"},
		{"help", StateHelp, "", "Help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestStatusBar_View_Document(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetDocument("modern", 5)
	bar.SetMessage("saved")

	view := bar.View()

	assert.Contains(t, view, "modern")
	assert.Contains(t, view, "5 sections")
	assert.Contains(t, view, "saved")
}

func TestStatusBar_View_HintsFollowState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	bar.SetState(StateEditor)
	assert.Contains(t, bar.View(), "move up")

	bar.SetState(StateSection)
	assert.Contains(t, bar.View(), "add block")

	bar.SetState(StateReady)
	assert.Contains(t, bar.View(), "quit")
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}
