// Package httpapi serves the editor over HTTP for 'vitae serve'.
// Open previews follow edits through the /api/live websocket.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/logger"
)

// ErrMissingEditorService is returned when the editor service is not provided.
var ErrMissingEditorService = errors.New("httpapi: editor service is required")

const (
	requestTimeout  = 30 * time.Second
	exportTimeout   = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// Config holds the services the server exposes.
type Config struct {
	Editor driving.EditorService
	Assist driving.AssistService
	Export driving.ExportService

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Health is checked by /healthz. Nil means always healthy.
	Health HealthChecker
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the HTTP front end of the editor.
type Server struct {
	editor   driving.EditorService
	assist   driving.AssistService
	export   driving.ExportService
	gatherer prometheus.Gatherer
	health   HealthChecker
	router   chi.Router
}

// New creates a server and mounts its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Editor == nil {
		return nil, ErrMissingEditorService
	}
	s := &Server{
		editor:   cfg.Editor,
		assist:   cfg.Assist,
		export:   cfg.Export,
		gatherer: cfg.Gatherer,
		health:   cfg.Health,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview", http.StatusFound)
	})
	r.Get("/preview", s.handlePreview)

	// The websocket outlives any request timeout.
	r.Get("/api/live", s.handleLive)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(exportTimeout))
		r.Get("/api/export.pdf", s.handleExportPDF)
		r.Post("/api/generate", s.handleGenerate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/api/document", s.handleGetDocument)
		r.Put("/api/document", s.handleReplaceDocument)
		r.Post("/api/document/reset", s.handleReset)
		r.Post("/api/document/field", s.handleUpdateField)
		r.Post("/api/document/blocks", s.handleAddBlock)
		r.Delete("/api/document/sections/{sectionID}/blocks/{blockID}", s.handleRemoveBlock)
		r.Put("/api/document/order", s.handleReorder)
		r.Patch("/api/document/sections/{sectionID}", s.handlePatchSection)
		r.Patch("/api/document/theme", s.handleSetTheme)
		r.Put("/api/template", s.handleSetTemplate)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
