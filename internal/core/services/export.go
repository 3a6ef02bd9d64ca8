package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/logger"
	"github.com/custodia-labs/vitae/internal/metrics"
	"github.com/custodia-labs/vitae/internal/render"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService renders the editor's current snapshot to HTML or PDF.
type ExportService struct {
	editor   driving.EditorService
	renderer driven.PDFRenderer
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// NewExportService creates an export service. renderer may be nil, in
// which case only HTML rendering is available. A non-positive timeout
// leaves the caller's context deadline in charge.
func NewExportService(
	editor driving.EditorService,
	renderer driven.PDFRenderer,
	timeout time.Duration,
	m *metrics.Metrics,
) *ExportService {
	return &ExportService{
		editor:   editor,
		renderer: renderer,
		timeout:  timeout,
		metrics:  m,
	}
}

// RenderHTML writes the current snapshot with the current template.
func (s *ExportService) RenderHTML(w io.Writer) error {
	return render.HTML(w, s.editor.Snapshot(), s.editor.Template())
}

// ExportPDF prints the current snapshot. Page size follows
// theme.layout.paper.
func (s *ExportService) ExportPDF(ctx context.Context) (*driving.PDFExport, error) {
	if s.renderer == nil {
		return nil, domain.ErrRendererUnavailable
	}

	doc := s.editor.Snapshot()
	tmpl := s.editor.Template()

	var page bytes.Buffer
	if err := render.HTML(&page, doc, tmpl); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	opts := domain.PrintOptionsFor(doc.Theme.Layout.Paper)
	logger.Section("Export PDF")
	logger.Debug("document=%s template=%s paper=%s size=%.2fx%.2fin",
		doc.ID, tmpl, opts.Paper, opts.Width, opts.Height)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := s.renderer.RenderPDF(ctx, page.String(), opts)
	s.metrics.ObserveExport(start)
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}

	logger.Debug("exported %d bytes in %s", len(data), time.Since(start))
	return &driving.PDFExport{
		DocumentID: doc.ID,
		Paper:      opts.Paper,
		Data:       data,
	}, nil
}
