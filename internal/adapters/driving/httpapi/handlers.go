package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/logger"
)

// DocumentResponse is the body of document reads and edits.
type DocumentResponse struct {
	Template domain.Template `json:"template"`
	Document domain.Document `json:"document"`
}

// UpdateFieldRequest is the body of POST /api/document/field.
type UpdateFieldRequest struct {
	SectionID string `json:"sectionId"`
	BlockID   string `json:"blockId"`
	Path      string `json:"path"`
	Value     any    `json:"value"`
}

// AddBlockRequest is the body of POST /api/document/blocks.
type AddBlockRequest struct {
	SectionID string        `json:"sectionId"`
	Type      string        `json:"type"`
	Fields    domain.Fields `json:"fields,omitempty"`
}

// AddBlockResponse carries the id of a new block.
type AddBlockResponse struct {
	ID string `json:"id"`
}

// ReorderRequest is the body of PUT /api/document/order.
type ReorderRequest struct {
	SectionIDs []string `json:"sectionIds"`
}

// SectionPatch is the body of PATCH /api/document/sections/{id}.
type SectionPatch struct {
	Title  *string `json:"title,omitempty"`
	Hidden *bool   `json:"hidden,omitempty"`
}

// TemplateRequest is the body of PUT /api/template.
type TemplateRequest struct {
	Template domain.Template `json:"template"`
}

// GenerateRequest is the body of POST /api/generate. When Apply is set the
// result is also written into that block.
type GenerateRequest struct {
	domain.GenerateRequest
	Apply *BlockRef `json:"apply,omitempty"`
}

// BlockRef addresses a block.
type BlockRef struct {
	SectionID string `json:"sectionId"`
	BlockID   string `json:"blockId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Health(r.Context()); err != nil {
			logger.Warn("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePreview(w http.ResponseWriter, _ *http.Request) {
	if s.export == nil {
		writeError(w, domain.ErrRendererUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := s.export.RenderHTML(&buf); err != nil {
		writeError(w, err)
		return
	}
	page := strings.Replace(buf.String(), "</body>", liveScript+"</body>", 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, page)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	doc, err := domain.DecodeDocument(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	s.editor.ReplaceDocument(doc)
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.editor.ResetToSample(r.Context())
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var req UpdateFieldRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.requireBlock(req.SectionID, req.BlockID); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.UpdateField(req.SectionID, req.BlockID, req.Path, req.Value); err != nil {
		writeError(w, err)
		return
	}
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req AddBlockRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeError(w, fmt.Errorf("%w: type is required", domain.ErrInvalidInput))
		return
	}
	id := s.editor.AddBlock(req.SectionID, domain.Block{Type: req.Type, Fields: req.Fields})
	if id == "" {
		writeError(w, fmt.Errorf("section %s: %w", req.SectionID, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, AddBlockResponse{ID: id})
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	blockID := chi.URLParam(r, "blockID")
	if err := s.requireBlock(sectionID, blockID); err != nil {
		writeError(w, err)
		return
	}
	s.editor.RemoveBlock(sectionID, blockID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decode(w, r, &req) {
		return
	}
	doc := s.editor.Snapshot()
	for _, id := range req.SectionIDs {
		if doc.SectionIndex(id) < 0 {
			writeError(w, fmt.Errorf("section %s: %w", id, domain.ErrNotFound))
			return
		}
	}
	s.editor.ReorderSections(req.SectionIDs)
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handlePatchSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	var patch SectionPatch
	if !decode(w, r, &patch) {
		return
	}
	doc := s.editor.Snapshot()
	if doc.SectionIndex(sectionID) < 0 {
		writeError(w, fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound))
		return
	}

	s.editor.SetDocument(func(doc domain.Document) domain.Document {
		i := doc.SectionIndex(sectionID)
		if i < 0 {
			return doc
		}
		if patch.Title != nil {
			doc.Sections[i].Title = *patch.Title
		}
		if patch.Hidden != nil {
			doc.Sections[i].Hidden = *patch.Hidden
		}
		return doc
	})
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var patch domain.ThemePatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Layout != nil && patch.Layout.Paper != nil && !patch.Layout.Paper.IsValid() {
		writeError(w, fmt.Errorf("%w: paper %q is not A4 or Letter", domain.ErrInvalidInput, *patch.Layout.Paper))
		return
	}
	s.editor.SetTheme(patch)
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.editor.SetTemplate(req.Template); err != nil {
		writeError(w, err)
		return
	}
	s.writeDocument(w, http.StatusOK)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if s.export == nil {
		writeError(w, domain.ErrRendererUnavailable)
		return
	}
	pdf, err := s.export.ExportPDF(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writePDF(w, pdf)
}

func writePDF(w http.ResponseWriter, pdf *driving.PDFExport) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.Data)))
	_, _ = w.Write(pdf.Data)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.assist == nil {
		writeError(w, domain.ErrLLMUnavailable)
		return
	}
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Apply != nil {
		if err := s.requireBlock(req.Apply.SectionID, req.Apply.BlockID); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := s.assist.Generate(r.Context(), req.GenerateRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Apply != nil {
		if err := s.assist.ApplyToBlock(req.Apply.SectionID, req.Apply.BlockID, result); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeDocument(w http.ResponseWriter, status int) {
	writeJSON(w, status, DocumentResponse{
		Template: s.editor.Template(),
		Document: s.editor.Snapshot(),
	})
}

// requireBlock reports a missing section or block as ErrNotFound; the
// editor itself treats misses as no-ops.
func (s *Server) requireBlock(sectionID, blockID string) error {
	doc := s.editor.Snapshot()
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}
	if doc.Sections[i].BlockIndex(blockID) < 0 {
		return fmt.Errorf("block %s: %w", blockID, domain.ErrNotFound)
	}
	return nil
}
