package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

func testSections() []domain.Section {
	return []domain.Section{
		{ID: "s1", Type: domain.SectionHeader, Title: "Header"},
		{ID: "s2", Type: domain.SectionSummary, Title: "Summary"},
		{ID: "s3", Type: domain.SectionSkills, Title: "Skills", Hidden: true},
	}
}

func TestNewSectionList(t *testing.T) {
	l := NewSectionList(nil)

	require.NotNil(t, l)
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedSection())
	assert.Nil(t, l.Init())
}

func TestSectionList_View_Empty(t *testing.T) {
	l := NewSectionList(nil)

	assert.Contains(t, l.View(), "No sections")
}

func TestSectionList_View(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())

	view := l.View()

	assert.Contains(t, view, "Sections (3)")
	assert.Contains(t, view, "Header")
	assert.Contains(t, view, "Skills")
}

func TestSectionList_Navigation(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 1, l.Selected())
}

func TestSectionList_SetSections_KeepsSelectionByID(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())
	l.SetSelected(1)

	reordered := []domain.Section{
		{ID: "s2", Title: "Summary"},
		{ID: "s1", Title: "Header"},
		{ID: "s3", Title: "Skills"},
	}
	l.SetSections(reordered)

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, "s2", l.SelectedSection().ID)
}

func TestSectionList_SetSections_ClampsWhenSelectionRemoved(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())
	l.SetSelected(2)

	l.SetSections([]domain.Section{{ID: "s1"}})

	assert.Equal(t, 0, l.Selected())

	l.SetSections(nil)
	assert.Equal(t, 0, l.Selected())
	assert.Nil(t, l.SelectedSection())
}

func TestSectionList_SwapOrder(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		delta    int
		want     []string
		ok       bool
	}{
		{"down from top", 0, 1, []string{"s2", "s1", "s3"}, true},
		{"up from bottom", 2, -1, []string{"s1", "s3", "s2"}, true},
		{"up from top", 0, -1, nil, false},
		{"down from bottom", 2, 1, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewSectionList(nil)
			l.SetSections(testSections())
			l.SetSelected(tt.selected)

			ids, ok := l.SwapOrder(tt.delta)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, []string{"s1", "s2", "s3"}, l.IDs())
		})
	}
}

func TestSectionList_SetSelected_IgnoresOutOfRange(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())

	l.SetSelected(5)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())
}

func TestSectionList_SetDimensions(t *testing.T) {
	l := NewSectionList(nil)

	l.SetDimensions(40, 20)

	assert.Equal(t, 40, l.Width())
	assert.Equal(t, 20, l.Height())
}

func TestSectionList_View_ScrollsToSelection(t *testing.T) {
	l := NewSectionList(nil)
	l.SetSections(testSections())
	l.SetDimensions(32, 3)
	l.SetSelected(2)

	view := l.View()

	assert.Contains(t, view, "Skills")
	assert.NotContains(t, view, "Header")
}
