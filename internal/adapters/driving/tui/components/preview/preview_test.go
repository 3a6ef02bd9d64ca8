package preview

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/render"
)

func sampleDoc() domain.Document {
	n := 0
	ids := func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	return domain.SampleDocument(ids, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestText_RendersHeaderAndSections(t *testing.T) {
	out := Text(render.Build(sampleDoc()), domain.TemplateClassic, 80)

	assert.Contains(t, out, "ALEX MORGAN")
	assert.Contains(t, out, "Senior Software Engineer")
	assert.Contains(t, out, "EXPERIENCE")
	assert.Contains(t, out, "Northwind Labs")
	assert.Contains(t, out, "• Led the migration")
	assert.Contains(t, out, "Kubernetes")
}

func TestText_ModernKeepsTitleCase(t *testing.T) {
	out := Text(render.Build(sampleDoc()), domain.TemplateModern, 80)

	assert.Contains(t, out, "Experience")
	assert.NotContains(t, out, "EXPERIENCE")
}

func TestText_SkipsHiddenSections(t *testing.T) {
	doc := sampleDoc()
	s, ok := doc.SectionByType(domain.SectionSkills)
	require.True(t, ok)
	s.Hidden = true

	out := Text(render.Build(doc), domain.TemplateClassic, 80)

	assert.NotContains(t, out, "SKILLS")
}

func TestText_EmptyDocument(t *testing.T) {
	assert.Equal(t, "", Text(render.View{}, domain.TemplateClassic, 10))
}

func TestSpacingLines(t *testing.T) {
	tests := []struct {
		px   int
		want int
	}{
		{0, 0},
		{-4, 0},
		{16, 1},
		{24, 2},
		{48, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, spacingLines(tt.px), "px=%d", tt.px)
	}
}

func TestColorOr(t *testing.T) {
	assert.Equal(t, "#abcdef", string(colorOr("#abcdef", "#000000")))
	assert.Equal(t, "#000000", string(colorOr("red", "#000000")))
	assert.Equal(t, "#000000", string(colorOr("", "#000000")))
}

func TestPane_SetDocument(t *testing.T) {
	p := NewPane(nil)
	p.SetDimensions(80, 10)

	p.SetDocument(sampleDoc(), domain.TemplateModern)

	assert.Contains(t, p.Content(), "Northwind Labs")
	assert.NotEmpty(t, p.View())
	assert.Nil(t, p.Init())
}

func TestPane_Scroll(t *testing.T) {
	p := NewPane(nil)
	p.SetDimensions(60, 4)
	p.SetDocument(sampleDoc(), domain.TemplateClassic)

	p.ScrollDown()
	assert.Positive(t, p.Offset())

	p.ScrollUp()
	p.ScrollUp()
	assert.Equal(t, 0, p.Offset())
}
