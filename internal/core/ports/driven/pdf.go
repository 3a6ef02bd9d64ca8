package driven

import (
	"context"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// PDFRenderer prints an HTML page to PDF.
// Implementations drive a headless browser.
type PDFRenderer interface {
	// RenderPDF loads html, waits for fonts, and prints it with opts.
	RenderPDF(ctx context.Context, html string, opts domain.PrintOptions) ([]byte, error)

	// Close releases the browser.
	Close() error
}
