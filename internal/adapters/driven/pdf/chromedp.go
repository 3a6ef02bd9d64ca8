// Package pdf renders HTML to PDF with a headless Chrome driven over the
// DevTools protocol.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.PDFRenderer = (*Renderer)(nil)

// Config configures the browser process.
type Config struct {
	// ExecPath is the Chrome or Chromium executable. Empty means auto-detect.
	ExecPath string

	// NoSandbox disables the Chrome sandbox, needed when running as root in
	// containers.
	NoSandbox bool
}

// Renderer owns one lazily started browser shared by all exports. Each
// export runs in its own tab.
type Renderer struct {
	cfg Config

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

// NewRenderer returns a renderer. The browser starts on the first export.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// RenderPDF loads html into a fresh tab, waits for web fonts and prints it.
func (r *Renderer) RenderPDF(ctx context.Context, html string, opts domain.PrintOptions) ([]byte, error) {
	browserCtx, err := r.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	// Tie the tab to the caller's deadline and cancellation.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, nil,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := printParams(opts).Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("print to pdf: %w", ctxErr)
		}
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return pdf, nil
}

// browser starts Chrome on first use. A failed start is not cached so a
// later export can retry after the user fixes the executable path.
func (r *Renderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx != nil {
		return r.browserCtx, nil
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.cfg.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	if r.cfg.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %w", domain.ErrRendererUnavailable, err)
	}
	logger.Debug("headless browser started")

	r.browserCtx = browserCtx
	r.cancelAlloc = cancelAlloc
	r.cancelTab = cancelTab
	return browserCtx, nil
}

// Close shuts the browser down. The renderer can be reused afterwards.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx == nil {
		return nil
	}
	r.cancelTab()
	r.cancelAlloc()
	r.browserCtx = nil
	return nil
}

// printParams maps page geometry onto Page.printToPDF.
func printParams(opts domain.PrintOptions) *page.PrintToPDFParams {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	return page.PrintToPDF().
		WithPaperWidth(opts.Width).
		WithPaperHeight(opts.Height).
		WithMarginTop(opts.Margins.Top).
		WithMarginRight(opts.Margins.Right).
		WithMarginBottom(opts.Margins.Bottom).
		WithMarginLeft(opts.Margins.Left).
		WithPrintBackground(opts.PrintBackground).
		WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
		WithScale(scale).
		WithPreferCSSPageSize(false)
}

// IsUnavailable reports whether err means no browser could be started.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrRendererUnavailable)
}
