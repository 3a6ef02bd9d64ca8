// Package section provides the block and field editor for one section.
package section

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// generateTimeout bounds one AI assist call.
const generateTimeout = time.Minute

// listSeparator joins list fields for editing on a single line.
const listSeparator = " | "

// fieldOrder lists the fields shown for each well-known block type, in
// display order. Fields a block carries beyond these follow sorted.
var fieldOrder = map[string][]string{
	domain.SectionHeader:     {"name", "headline", "email", "phone", "location", "links"},
	domain.SectionSummary:    {"text"},
	domain.SectionExperience: {"role", "company", "location", "start", "end", "summary", "highlights"},
	domain.SectionEducation:  {"degree", "school", "location", "start", "end"},
	domain.SectionSkills:     {"items"},
}

// listFields are edited as separator-joined lists.
var listFields = map[string]bool{
	"links":      true,
	"highlights": true,
	"items":      true,
	"tags":       true,
	"skills":     true,
}

// row is one selectable line: a block heading when field is empty.
type row struct {
	blockID string
	field   string
}

// View edits the blocks of a single section.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	editor driving.EditorService
	assist driving.AssistService

	input *input.FieldInput

	sectionID string
	section   domain.Section
	rows      []row
	selected  int
	editing   bool
	busy      bool
	err       error

	width  int
	height int
}

// NewView creates a section view. assist may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, editor driving.EditorService, assist driving.AssistService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		editor: editor,
		assist: assist,
		input:  input.NewFieldInput(s),
		width:  80,
		height: 24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open switches the view to a section.
func (v *View) Open(sectionID string) {
	v.sectionID = sectionID
	v.selected = 0
	v.editing = false
	v.busy = false
	v.err = nil
	v.input.Reset()
	v.SetDocument(v.editor.Snapshot())
}

// SetDocument reloads the open section from doc, keeping the cursor on
// the same block field where possible.
func (v *View) SetDocument(doc domain.Document) {
	var current row
	if v.selected >= 0 && v.selected < len(v.rows) {
		current = v.rows[v.selected]
	}

	v.section = domain.Section{}
	if i := doc.SectionIndex(v.sectionID); i >= 0 {
		v.section = doc.Sections[i]
	}
	v.rows = buildRows(v.section)

	for i, r := range v.rows {
		if r == current {
			v.selected = i
			return
		}
	}
	if v.selected >= len(v.rows) {
		v.selected = len(v.rows) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

func buildRows(s domain.Section) []row {
	rows := make([]row, 0, len(s.Blocks)*6)
	for _, b := range s.Blocks {
		rows = append(rows, row{blockID: b.ID})
		for _, f := range fieldsOf(b) {
			rows = append(rows, row{blockID: b.ID, field: f})
		}
	}
	return rows
}

// fieldsOf returns the editable fields of b in display order.
func fieldsOf(b domain.Block) []string {
	known := fieldOrder[b.Type]
	seen := make(map[string]bool, len(known))
	out := make([]string, 0, len(known)+len(b.Fields))
	for _, f := range known {
		seen[f] = true
		out = append(out, f)
	}
	extra := make([]string, 0, len(b.Fields))
	for f := range b.Fields {
		if !seen[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Update handles messages for the section view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentChanged:
		v.SetDocument(msg.Document)
		return v, nil

	case messages.GenerateCompleted:
		return v, v.applyGenerated(msg)

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.input.Reset()
		return v, nil
	case tea.KeyEnter:
		return v, v.commitEdit()
	default:
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewEditor} }

	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}

	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.rows)-1 {
			v.selected++
		}

	case keymap.Matches(k, v.keymap.Edit):
		return v, v.startEdit()

	case keymap.Matches(k, v.keymap.Add):
		return v, v.addBlock()

	case keymap.Matches(k, v.keymap.Delete):
		return v, v.removeBlock()

	case keymap.Matches(k, v.keymap.Generate):
		return v, v.generate()
	}
	return v, nil
}

func (v *View) current() (row, *domain.Block) {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return row{}, nil
	}
	r := v.rows[v.selected]
	i := v.section.BlockIndex(r.blockID)
	if i < 0 {
		return r, nil
	}
	return r, &v.section.Blocks[i]
}

func (v *View) startEdit() tea.Cmd {
	r, b := v.current()
	if b == nil || r.field == "" {
		return nil
	}
	value := b.Fields.String(r.field)
	if listFields[r.field] {
		value = strings.Join(b.Fields.Strings(r.field), listSeparator)
	}
	v.editing = true
	v.err = nil
	v.input.SetWidth(v.width)
	return v.input.Start(r.field, value)
}

func (v *View) commitEdit() tea.Cmd {
	r, b := v.current()
	raw := v.input.Value()
	v.editing = false
	v.input.Reset()
	if b == nil || r.field == "" {
		return nil
	}

	var value any = strings.TrimSpace(raw)
	if listFields[r.field] {
		value = splitList(raw)
	}
	if err := v.editor.UpdateField(v.sectionID, r.blockID, r.field, value); err != nil {
		v.err = err
		return nil
	}
	v.SetDocument(v.editor.Snapshot())
	return status(fmt.Sprintf("Updated %s", r.field))
}

// splitList parses a separator-joined list, dropping empty entries.
func splitList(raw string) []any {
	parts := strings.Split(raw, "|")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (v *View) addBlock() tea.Cmd {
	if v.section.ID == "" {
		return nil
	}
	fields := domain.Fields{}
	for _, f := range fieldOrder[v.section.Type] {
		if listFields[f] {
			fields[f] = []any{}
		} else {
			fields[f] = ""
		}
	}
	id := v.editor.AddBlock(v.sectionID, domain.Block{Type: v.section.Type, Fields: fields})
	if id == "" {
		return errorCmd(fmt.Errorf("%w: section %s", domain.ErrNotFound, v.sectionID))
	}
	v.SetDocument(v.editor.Snapshot())
	for i, r := range v.rows {
		if r.blockID == id && r.field == "" {
			v.selected = i
			break
		}
	}
	return status("Block added")
}

func (v *View) removeBlock() tea.Cmd {
	r, b := v.current()
	if b == nil {
		return nil
	}
	v.editor.RemoveBlock(v.sectionID, r.blockID)
	v.SetDocument(v.editor.Snapshot())
	return status("Block removed")
}

func (v *View) generate() tea.Cmd {
	if v.busy {
		return nil
	}
	if v.assist == nil || !v.assist.Available() {
		return errorCmd(domain.ErrLLMUnavailable)
	}
	r, b := v.current()
	if b == nil {
		return nil
	}
	req, err := requestFor(v.section.Type, b.Fields)
	if err != nil {
		return errorCmd(err)
	}

	v.busy = true
	assist := v.assist
	sectionID, blockID := v.sectionID, r.blockID
	return tea.Batch(
		func() tea.Msg { return messages.StatusUpdated{Text: "Generating", Busy: true} },
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
			defer cancel()
			result, err := assist.Generate(ctx, req)
			return messages.GenerateCompleted{SectionID: sectionID, BlockID: blockID, Result: result, Err: err}
		},
	)
}

func (v *View) applyGenerated(msg messages.GenerateCompleted) tea.Cmd {
	v.busy = false
	if msg.Err != nil {
		return errorCmd(msg.Err)
	}
	if err := v.assist.ApplyToBlock(msg.SectionID, msg.BlockID, msg.Result); err != nil {
		return errorCmd(err)
	}
	if msg.SectionID == v.sectionID {
		v.SetDocument(v.editor.Snapshot())
	}
	return status("Generated text applied")
}

// requestFor builds an assist request from a block's fields.
func requestFor(sectionType string, f domain.Fields) (domain.GenerateRequest, error) {
	req := domain.GenerateRequest{
		Location: f.String("location"),
		Start:    f.String("start"),
		End:      f.String("end"),
		Skills:   f.Strings("skills"),
		Style:    domain.StyleConcise,
	}
	switch sectionType {
	case domain.SectionExperience:
		req.Section = domain.AssistExperience
		req.Role = f.String("role")
		req.Organization = f.String("company")
		req.WantBullets = true
	case domain.SectionEducation:
		req.Section = domain.AssistEducation
		req.Role = f.String("degree")
		req.Organization = f.String("school")
	case "projects", "project":
		req.Section = domain.AssistProject
		req.Role = f.String("name")
		req.WantBullets = true
	case "certifications", "certification":
		req.Section = domain.AssistCertification
		req.Role = f.String("name")
		req.Organization = f.String("issuer")
	default:
		return req, fmt.Errorf("%w: AI assist does not write %q sections", domain.ErrInvalidInput, sectionType)
	}
	return req, nil
}

// View renders the section editor.
func (v *View) View() string {
	var b strings.Builder

	title := v.section.Title
	if title == "" {
		title = v.section.Type
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.section.ID == "" {
		b.WriteString(v.styles.Muted.Render("Section not found"))
		return b.String()
	}
	if len(v.rows) == 0 {
		b.WriteString(v.styles.Muted.Render("No blocks. Press a to add one."))
	}

	visible := v.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := start + visible
	if end > len(v.rows) {
		end = len(v.rows)
	}

	for i := start; i < end; i++ {
		b.WriteString(v.renderRow(i))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.input.View())
		b.WriteString("\n")
		if listFields[v.input.Label()] {
			b.WriteString(v.styles.Muted.Render("Separate entries with |"))
			b.WriteString("\n")
		}
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderRow(i int) string {
	r := v.rows[i]
	selected := i == v.selected
	indicator := "  "
	if selected {
		indicator = "> "
	}

	bi := v.section.BlockIndex(r.blockID)
	if bi < 0 {
		return ""
	}
	blk := v.section.Blocks[bi]

	var line string
	if r.field == "" {
		line = fmt.Sprintf("%s[%s] %s", indicator, blk.Type, r.blockID)
		if selected {
			return v.styles.Selected.Render(line)
		}
		return v.styles.Subtitle.Render(line)
	}

	value := blk.Fields.String(r.field)
	if listFields[r.field] {
		value = strings.Join(blk.Fields.Strings(r.field), listSeparator)
	}
	maxValue := v.width - len(r.field) - 10
	if maxValue < 10 {
		maxValue = 10
	}
	if runes := []rune(value); len(runes) > maxValue {
		value = string(runes[:maxValue-1]) + "…"
	}
	line = fmt.Sprintf("%s  %s: %s", indicator, r.field, value)
	if selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
}

// Editing reports whether a field input has focus. Global keys are
// suspended while editing.
func (v *View) Editing() bool {
	return v.editing
}

// SectionID returns the open section.
func (v *View) SectionID() string {
	return v.sectionID
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return messages.StatusUpdated{Text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
}
