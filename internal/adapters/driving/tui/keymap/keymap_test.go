package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"move up", km.MoveUp, []string{"K", "shift+up"}},
		{"move down", km.MoveDown, []string{"J", "shift+down"}},
		{"select", km.Select, []string{"enter"}},
		{"toggle hidden", km.ToggleHidden, []string{"h"}},
		{"template", km.Template, []string{"t"}},
		{"reset", km.Reset, []string{"R"}},
		{"export", km.Export, []string{"p"}},
		{"add", km.Add, []string{"a"}},
		{"delete", km.Delete, []string{"d"}},
		{"generate", km.Generate, []string{"g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_ReorderDoesNotShadowNavigation(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("k", km.MoveUp))
	assert.False(t, Matches("j", km.MoveDown))
	assert.False(t, Matches("K", km.Up))
	assert.False(t, Matches("J", km.Down))
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
}

func TestKeyMap_EditorHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.EditorHelp()
	assert.NotEmpty(t, help)
	for _, b := range help {
		assert.NotEmpty(t, b.Help().Key)
	}
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()
	assert.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("", km.Quit))
}
