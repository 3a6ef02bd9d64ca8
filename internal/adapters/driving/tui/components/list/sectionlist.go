// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/core/domain"
)

// SectionList displays the document outline in a navigable list.
type SectionList struct {
	sections []domain.Section
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSectionList creates a new section list component.
func NewSectionList(s *styles.Styles) *SectionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SectionList{
		styles: s,
		width:  32,
		height: 10,
	}
}

// Init initialises the section list.
func (l *SectionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SectionList) Update(msg tea.Msg) (*SectionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the section list.
func (l *SectionList) View() string {
	if len(l.sections) == 0 {
		return l.styles.Muted.Render("No sections")
	}

	lines := make([]string, 0, len(l.sections)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sections (%d)", len(l.sections))), "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.sections) {
		end = len(l.sections)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSection(i, &l.sections[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *SectionList) renderSection(index int, s *domain.Section) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := s.Title
	if title == "" {
		title = s.Type
	}
	maxTitle := l.width - 8
	if maxTitle < 8 {
		maxTitle = 8
	}
	if len(title) > maxTitle {
		title = title[:maxTitle-3] + "..."
	}
	line := fmt.Sprintf("%s%-*s %3d", indicator, maxTitle, title, len(s.Blocks))

	switch {
	case index == l.selected:
		return l.styles.Selected.Render(line)
	case s.Hidden:
		return l.styles.Hidden.Render(line)
	default:
		return l.styles.Normal.Render(line)
	}
}

// SetSections replaces the outline, keeping the selection on the same
// section id when it still exists.
func (l *SectionList) SetSections(sections []domain.Section) {
	var current string
	if sel := l.SelectedSection(); sel != nil {
		current = sel.ID
	}

	l.sections = sections
	for i := range sections {
		if sections[i].ID == current {
			l.selected = i
			return
		}
	}
	if l.selected >= len(sections) {
		l.selected = len(sections) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Sections returns the current outline.
func (l *SectionList) Sections() []domain.Section {
	return l.sections
}

// IDs returns the section ids in display order.
func (l *SectionList) IDs() []string {
	ids := make([]string, len(l.sections))
	for i := range l.sections {
		ids[i] = l.sections[i].ID
	}
	return ids
}

// Selected returns the index of the selected section.
func (l *SectionList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *SectionList) SetSelected(index int) {
	if index >= 0 && index < len(l.sections) {
		l.selected = index
	}
}

// SelectedSection returns the currently selected section, or nil if none.
func (l *SectionList) SelectedSection() *domain.Section {
	if len(l.sections) == 0 || l.selected < 0 || l.selected >= len(l.sections) {
		return nil
	}
	return &l.sections[l.selected]
}

// MoveUp moves selection up.
func (l *SectionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SectionList) MoveDown() {
	if l.selected < len(l.sections)-1 {
		l.selected++
	}
}

// SwapOrder returns the section ids with the selected section moved by
// delta positions, and ok=false when the move would leave the list.
func (l *SectionList) SwapOrder(delta int) (ids []string, ok bool) {
	target := l.selected + delta
	if len(l.sections) == 0 || target < 0 || target >= len(l.sections) {
		return nil, false
	}
	ids = l.IDs()
	ids[l.selected], ids[target] = ids[target], ids[l.selected]
	return ids, true
}

// SetDimensions sets the component dimensions.
func (l *SectionList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *SectionList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *SectionList) Height() int {
	return l.height
}

// Count returns the number of sections.
func (l *SectionList) Count() int {
	return len(l.sections)
}

// IsEmpty returns whether the list is empty.
func (l *SectionList) IsEmpty() bool {
	return len(l.sections) == 0
}
