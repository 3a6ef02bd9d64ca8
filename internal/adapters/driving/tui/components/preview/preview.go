// Package preview renders a terminal approximation of the resume.
package preview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/render"
)

// Pane shows the rendered document in a scrollable viewport.
type Pane struct {
	viewport viewport.Model
	styles   *styles.Styles
	view     render.View
	template domain.Template
}

// NewPane creates an empty preview pane.
func NewPane(s *styles.Styles) *Pane {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Pane{
		viewport: viewport.New(60, 20),
		styles:   s,
		template: domain.DefaultTemplate,
	}
}

// Init initialises the pane.
func (p *Pane) Init() tea.Cmd {
	return nil
}

// Update forwards scrolling messages to the viewport.
func (p *Pane) Update(msg tea.Msg) (*Pane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the pane.
func (p *Pane) View() string {
	return p.styles.Pane.Render(p.viewport.View())
}

// SetDocument re-renders the pane for doc under tmpl. The scroll offset
// is kept so live edits do not jump the view.
func (p *Pane) SetDocument(doc domain.Document, tmpl domain.Template) {
	p.view = render.Build(doc)
	p.template = tmpl
	p.refresh()
}

// SetDimensions resizes the viewport, leaving room for the pane border.
func (p *Pane) SetDimensions(width, height int) {
	w := width - 3
	if w < 20 {
		w = 20
	}
	if height < 3 {
		height = 3
	}
	p.viewport.Width = w
	p.viewport.Height = height
	p.refresh()
}

// ScrollUp moves the preview up half a page.
func (p *Pane) ScrollUp() {
	p.viewport.HalfViewUp()
}

// ScrollDown moves the preview down half a page.
func (p *Pane) ScrollDown() {
	p.viewport.HalfViewDown()
}

// Offset returns the current scroll offset.
func (p *Pane) Offset() int {
	return p.viewport.YOffset
}

// Content returns the unstyled lines currently rendered.
func (p *Pane) Content() string {
	return Text(p.view, p.template, p.viewport.Width)
}

func (p *Pane) refresh() {
	p.viewport.SetContent(Text(p.view, p.template, p.viewport.Width))
}

// Text lays out v as styled terminal text wrapped to width. The modern
// template colours headings with the theme accent; classic uses the
// primary colour and upper-cased headings.
func Text(v render.View, tmpl domain.Template, width int) string {
	if width < 20 {
		width = 20
	}
	heading := lipgloss.NewStyle().Bold(true)
	if tmpl == domain.TemplateModern {
		heading = heading.Foreground(colorOr(v.Theme.Colors.Accent, "#2563eb"))
	} else {
		heading = heading.Foreground(colorOr(v.Theme.Colors.Primary, "#111827")).Underline(true)
	}
	muted := lipgloss.NewStyle().Foreground(colorOr(v.Theme.Colors.Muted, "#6b7280"))
	bold := lipgloss.NewStyle().Bold(true)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if !v.Header.IsEmpty() {
		b.WriteString(bold.Render(strings.ToUpper(v.Header.Name)))
		b.WriteString("\n")
		if v.Header.Headline != "" {
			b.WriteString(v.Header.Headline + "\n")
		}
		contact := nonEmpty(v.Header.Email, v.Header.Phone, v.Header.Location)
		contact = append(contact, v.Header.Links...)
		if len(contact) > 0 {
			b.WriteString(wrap.Render(muted.Render(strings.Join(contact, " · "))))
			b.WriteString("\n")
		}
	}

	spacer := strings.Repeat("\n", spacingLines(v.Theme.Spacing.SectionY))
	for _, s := range v.Sections {
		b.WriteString(spacer)
		title := s.Title
		if tmpl != domain.TemplateModern {
			title = strings.ToUpper(title)
		}
		b.WriteString(heading.Render(title))
		b.WriteString("\n")
		for _, it := range s.Items {
			writeItem(&b, it, width, bold, muted)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeItem(b *strings.Builder, it render.Item, width int, bold, muted lipgloss.Style) {
	wrap := lipgloss.NewStyle().Width(width)
	if it.Heading != "" {
		line := bold.Render(it.Heading)
		if it.Subheading != "" {
			line += ", " + it.Subheading
		}
		if meta := nonEmpty(it.Location, it.Dates); len(meta) > 0 {
			line += "  " + muted.Render(strings.Join(meta, " | "))
		}
		b.WriteString(wrap.Render(line))
		b.WriteString("\n")
	}
	if it.Text != "" {
		b.WriteString(wrap.Render(it.Text))
		b.WriteString("\n")
	}
	bullet := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	for _, line := range it.Bullets {
		b.WriteString(bullet.Render("• " + line))
		b.WriteString("\n")
	}
	if len(it.Tags) > 0 {
		b.WriteString(wrap.Render(strings.Join(it.Tags, " · ")))
		b.WriteString("\n")
	}
}

// spacingLines maps the pixel section spacing onto blank terminal lines.
func spacingLines(px int) int {
	switch {
	case px <= 0:
		return 0
	case px < 24:
		return 1
	default:
		return 2
	}
}

func colorOr(c, fallback string) lipgloss.Color {
	if strings.HasPrefix(c, "#") {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(fallback)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
