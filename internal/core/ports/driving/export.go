package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// ExportService renders the current document.
type ExportService interface {
	// RenderHTML writes the current snapshot as a standalone HTML page
	// using the current template.
	RenderHTML(w io.Writer) error

	// ExportPDF prints the current snapshot to PDF sized by its paper.
	// Returns domain.ErrRendererUnavailable when no renderer is configured.
	ExportPDF(ctx context.Context) (*PDFExport, error)
}

// PDFExport is a rendered PDF and the document it was made from.
type PDFExport struct {
	// DocumentID is the id of the exported document.
	DocumentID string

	// Paper is the page size used.
	Paper domain.Paper

	// Data is the PDF byte stream.
	Data []byte
}

// FileName returns the default file name for the export.
func (e *PDFExport) FileName() string {
	return e.DocumentID + ".pdf"
}
