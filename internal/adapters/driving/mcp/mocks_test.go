package mcp

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/core/services"
)

// seqIDs returns deterministic ids of the form prefix_N.
func seqIDs() domain.IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

// newTestEditor returns an editor holding the sample document.
func newTestEditor() *services.Editor {
	ids := seqIDs()
	doc := domain.SampleDocument(ids, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return services.NewEditor(doc, services.WithIDFunc(ids))
}

// sectionOf returns the first section of the given type.
func sectionOf(doc domain.Document, sectionType string) domain.Section {
	s, ok := doc.SectionByType(sectionType)
	if !ok {
		panic("sample has no " + sectionType + " section")
	}
	return *s
}

// mockAssistService is a mock implementation of driving.AssistService.
type mockAssistService struct {
	result  *domain.GenerateResult
	err     error
	lastReq domain.GenerateRequest
	applied []string
	editor  *services.Editor
}

func (m *mockAssistService) Generate(_ context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockAssistService) ApplyToBlock(sectionID, blockID string, result *domain.GenerateResult) error {
	m.applied = append(m.applied, sectionID+"/"+blockID)
	if m.editor != nil {
		return m.editor.UpdateField(sectionID, blockID, "summary", result.Paragraph)
	}
	return nil
}

func (m *mockAssistService) Available() bool {
	return m.err == nil
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	html string
	err  error
}

func (m *mockExportService) RenderHTML(w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.html)
	return err
}

func (m *mockExportService) ExportPDF(_ context.Context) (*driving.PDFExport, error) {
	return nil, domain.ErrRendererUnavailable
}
