// Package editor provides the document outline view with a live preview.
package editor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/components/preview"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// exportTimeout bounds a PDF export started from the TUI.
const exportTimeout = 2 * time.Minute

// listWidth is the width of the outline column.
const listWidth = 32

// View shows the section outline next to a rendered preview.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	editor driving.EditorService
	export driving.ExportService

	sections *list.SectionList
	preview  *preview.Pane

	doc          domain.Document
	template     domain.Template
	confirmReset bool
	notice       string

	width  int
	height int
	ready  bool
}

// NewView creates an editor view. export may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, editor driving.EditorService, export driving.ExportService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:   s,
		keymap:   km,
		editor:   editor,
		export:   export,
		sections: list.NewSectionList(s),
		preview:  preview.NewPane(s),
		width:    80,
		height:   24,
	}
	if editor != nil {
		v.SetDocument(editor.Snapshot(), editor.Template())
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the editor view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentChanged:
		v.SetDocument(msg.Document, msg.Template)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if v.confirmReset {
		v.confirmReset = false
		v.notice = ""
		if k == "y" || k == "Y" {
			v.editor.ResetToSample(context.Background())
			v.refresh()
			return v, status("Reset to sample")
		}
		return v, nil
	}

	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }

	case keymap.Matches(k, v.keymap.MoveUp):
		return v, v.move(-1)

	case keymap.Matches(k, v.keymap.MoveDown):
		return v, v.move(1)

	case keymap.Matches(k, v.keymap.Up):
		v.sections.MoveUp()

	case keymap.Matches(k, v.keymap.Down):
		v.sections.MoveDown()

	case keymap.Matches(k, v.keymap.ToggleHidden):
		return v, v.toggleHidden()

	case keymap.Matches(k, v.keymap.Template):
		return v, v.nextTemplate()

	case keymap.Matches(k, v.keymap.Reset):
		v.confirmReset = true
		v.notice = "Replace the document with the sample? [y/N]"

	case keymap.Matches(k, v.keymap.Export):
		return v, v.exportPDF()

	case keymap.Matches(k, v.keymap.Select):
		if sel := v.sections.SelectedSection(); sel != nil {
			id := sel.ID
			return v, func() tea.Msg { return messages.SectionSelected{SectionID: id} }
		}

	case keymap.Matches(k, v.keymap.ScrollUp):
		v.preview.ScrollUp()

	case keymap.Matches(k, v.keymap.ScrollDown):
		v.preview.ScrollDown()
	}
	return v, nil
}

func (v *View) move(delta int) tea.Cmd {
	ids, ok := v.sections.SwapOrder(delta)
	if !ok {
		return nil
	}
	v.editor.ReorderSections(ids)
	v.refresh()
	return nil
}

func (v *View) toggleHidden() tea.Cmd {
	sel := v.sections.SelectedSection()
	if sel == nil {
		return nil
	}
	id := sel.ID
	v.editor.SetDocument(func(d domain.Document) domain.Document {
		if i := d.SectionIndex(id); i >= 0 {
			d.Sections[i].Hidden = !d.Sections[i].Hidden
		}
		return d
	})
	v.refresh()
	return nil
}

func (v *View) nextTemplate() tea.Cmd {
	all := domain.AllTemplates()
	next := all[0]
	for i, t := range all {
		if t == v.template {
			next = all[(i+1)%len(all)]
			break
		}
	}
	if err := v.editor.SetTemplate(next); err != nil {
		return errorCmd(err)
	}
	v.refresh()
	return status("Template: " + next.String())
}

func (v *View) exportPDF() tea.Cmd {
	if v.export == nil {
		return errorCmd(domain.ErrRendererUnavailable)
	}
	export := v.export
	return tea.Batch(
		func() tea.Msg { return messages.StatusUpdated{Text: "Exporting PDF", Busy: true} },
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
			defer cancel()
			pdf, err := export.ExportPDF(ctx)
			if err != nil {
				return messages.ExportCompleted{Err: err}
			}
			path := pdf.FileName()
			//nolint:gosec // G306: exported PDFs are meant to be readable
			if err := os.WriteFile(path, pdf.Data, 0o644); err != nil {
				return messages.ExportCompleted{Err: fmt.Errorf("write %s: %w", path, err)}
			}
			return messages.ExportCompleted{Path: path}
		},
	)
}

// refresh pulls the committed snapshot so the view reflects an edit
// before the subscription delivers it.
func (v *View) refresh() {
	v.SetDocument(v.editor.Snapshot(), v.editor.Template())
}

// SetDocument updates the outline and preview.
func (v *View) SetDocument(doc domain.Document, tmpl domain.Template) {
	v.doc = doc
	v.template = tmpl
	v.sections.SetSections(doc.Sections)
	v.preview.SetDocument(doc, tmpl)
}

// View renders the editor.
func (v *View) View() string {
	var left strings.Builder
	left.WriteString(v.styles.Title.Render(v.doc.Meta.Title))
	left.WriteString("\n")
	left.WriteString(v.styles.Muted.Render("template: " + v.template.String()))
	left.WriteString("\n\n")
	left.WriteString(v.sections.View())
	if v.notice != "" {
		left.WriteString("\n\n")
		left.WriteString(v.styles.Warning.Render(v.notice))
	}

	leftCol := lipgloss.NewStyle().Width(listWidth).Render(left.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, v.preview.View())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.sections.SetDimensions(listWidth, height-4)
	v.preview.SetDimensions(width-listWidth, height)
}

// Selected returns the id of the selected section, or "".
func (v *View) Selected() string {
	if sel := v.sections.SelectedSection(); sel != nil {
		return sel.ID
	}
	return ""
}

// ConfirmingReset reports whether a reset confirmation is pending.
func (v *View) ConfirmingReset() bool {
	return v.confirmReset
}

// Preview exposes the preview pane.
func (v *View) Preview() *preview.Pane {
	return v.preview
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return messages.StatusUpdated{Text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
}
