package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/services"
	"github.com/custodia-labs/vitae/internal/metrics"
)

func seqIDs() domain.IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

type fakeRenderer struct {
	data     []byte
	err      error
	lastOpts domain.PrintOptions
}

func (f *fakeRenderer) RenderPDF(_ context.Context, _ string, opts domain.PrintOptions) ([]byte, error) {
	f.lastOpts = opts
	return f.data, f.err
}

func (f *fakeRenderer) Close() error { return nil }

type fakeAssist struct {
	result  *domain.GenerateResult
	err     error
	applied string
}

func (f *fakeAssist) Generate(_ context.Context, _ domain.GenerateRequest) (*domain.GenerateResult, error) {
	return f.result, f.err
}

func (f *fakeAssist) ApplyToBlock(sectionID, blockID string, _ *domain.GenerateResult) error {
	f.applied = sectionID + "/" + blockID
	return nil
}

func (f *fakeAssist) Available() bool { return true }

// ServerSuite exercises the HTTP API against a real editor.
type ServerSuite struct {
	suite.Suite
	editor   *services.Editor
	renderer *fakeRenderer
	assist   *fakeAssist
	registry *prometheus.Registry
	handler  http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	ids := seqIDs()
	s.registry = prometheus.NewRegistry()
	m := metrics.New(s.registry)
	doc := domain.SampleDocument(ids, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.editor = services.NewEditor(doc, services.WithIDFunc(ids), services.WithMetrics(m))
	s.renderer = &fakeRenderer{data: []byte("%PDF-1.7 fake")}
	s.assist = &fakeAssist{result: &domain.GenerateResult{Paragraph: "Shipped things."}}

	server, err := New(Config{
		Editor:   s.editor,
		Assist:   s.assist,
		Export:   services.NewExportService(s.editor, s.renderer, 0, m),
		Gatherer: s.registry,
	})
	s.Require().NoError(err)
	s.handler = server.Handler()
}

func (s *ServerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			s.Require().NoError(err)
			raw = string(data)
		}
		reader = strings.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decodeDocument(rec *httptest.ResponseRecorder) DocumentResponse {
	var resp DocumentResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func (s *ServerSuite) decodeError(rec *httptest.ResponseRecorder) errorResponse {
	var resp errorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func (s *ServerSuite) section(sectionType string) domain.Section {
	doc := s.editor.Snapshot()
	sec, ok := doc.SectionByType(sectionType)
	s.Require().True(ok)
	return *sec
}

func (s *ServerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(context.Context) error { return f.err }

func (s *ServerSuite) TestHealth_ChecksStore() {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"reachable", nil, http.StatusOK, `{"status":"ok"}`},
		{"unreachable", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			server, err := New(Config{Editor: s.editor, Health: fakeHealth{err: tt.err}})
			s.Require().NoError(err)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			s.Equal(tt.wantCode, rec.Code)
			s.JSONEq(tt.wantBody, rec.Body.String())
		})
	}
}

func (s *ServerSuite) TestRootRedirectsToPreview() {
	rec := s.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/preview", rec.Header().Get("Location"))
}

func (s *ServerSuite) TestPreview() {
	rec := s.do(http.MethodGet, "/preview", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "text/html")
	s.Contains(rec.Body.String(), "Alex Morgan")
	s.Contains(rec.Body.String(), "/api/live")
}

func (s *ServerSuite) TestGetDocument() {
	rec := s.do(http.MethodGet, "/api/document", nil)
	s.Equal(http.StatusOK, rec.Code)

	resp := s.decodeDocument(rec)
	s.Equal(domain.TemplateClassic, resp.Template)
	s.Equal(s.editor.Snapshot().ID, resp.Document.ID)
	s.Len(resp.Document.Sections, 5)
}

func (s *ServerSuite) TestUpdateField() {
	header := s.section(domain.SectionHeader)

	s.Run("sets field", func() {
		rec := s.do(http.MethodPost, "/api/document/field", UpdateFieldRequest{
			SectionID: header.ID, BlockID: header.Blocks[0].ID, Path: "name", Value: "Sam Lee",
		})
		s.Equal(http.StatusOK, rec.Code)
		resp := s.decodeDocument(rec)
		s.Equal("Sam Lee", resp.Document.Sections[0].Blocks[0].Fields.String("name"))
	})

	s.Run("missing block", func() {
		rec := s.do(http.MethodPost, "/api/document/field", UpdateFieldRequest{
			SectionID: header.ID, BlockID: "nope", Path: "name", Value: "x",
		})
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("not_found", s.decodeError(rec).Error)
	})

	s.Run("empty path", func() {
		rec := s.do(http.MethodPost, "/api/document/field", UpdateFieldRequest{
			SectionID: header.ID, BlockID: header.Blocks[0].ID, Value: "x",
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown body field", func() {
		rec := s.do(http.MethodPost, "/api/document/field", `{"sectionId":"a","bogus":1}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", s.decodeError(rec).Error)
	})

	s.Run("wrong content type", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/document/field", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		s.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})
}

func (s *ServerSuite) TestAddAndRemoveBlock() {
	exp := s.section(domain.SectionExperience)

	rec := s.do(http.MethodPost, "/api/document/blocks", AddBlockRequest{
		SectionID: exp.ID, Type: "experience", Fields: domain.Fields{"role": "Intern"},
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var added AddBlockResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&added))
	s.Regexp(`^experience_\d+$`, added.ID)
	s.Len(s.section(domain.SectionExperience).Blocks, 3)

	path := "/api/document/sections/" + exp.ID + "/blocks/" + added.ID
	rec = s.do(http.MethodDelete, path, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Len(s.section(domain.SectionExperience).Blocks, 2)

	rec = s.do(http.MethodDelete, path, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestAddBlock_Errors() {
	rec := s.do(http.MethodPost, "/api/document/blocks", AddBlockRequest{SectionID: "nope", Type: "x"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/document/blocks", AddBlockRequest{SectionID: "nope"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestReorder() {
	doc := s.editor.Snapshot()
	ids := []string{doc.Sections[4].ID, doc.Sections[0].ID, doc.Sections[1].ID, doc.Sections[2].ID, doc.Sections[3].ID}

	rec := s.do(http.MethodPut, "/api/document/order", ReorderRequest{SectionIDs: ids})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(domain.SectionSkills, s.editor.Snapshot().Sections[0].Type)

	before := s.editor.Snapshot()
	rec = s.do(http.MethodPut, "/api/document/order", ReorderRequest{SectionIDs: []string{"nope"}})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(before, s.editor.Snapshot())
}

func (s *ServerSuite) TestPatchSection() {
	summary := s.section(domain.SectionSummary)
	hidden := true
	title := "Profile"

	rec := s.do(http.MethodPatch, "/api/document/sections/"+summary.ID, SectionPatch{Title: &title, Hidden: &hidden})
	s.Equal(http.StatusOK, rec.Code)

	got := s.section(domain.SectionSummary)
	s.True(got.Hidden)
	s.Equal("Profile", got.Title)

	rec = s.do(http.MethodPatch, "/api/document/sections/nope", SectionPatch{Hidden: &hidden})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestSetTheme() {
	rec := s.do(http.MethodPatch, "/api/document/theme", `{"colors":{"accent":"#ff0000"},"layout":{"paper":"Letter"}}`)
	s.Equal(http.StatusOK, rec.Code)

	theme := s.editor.Snapshot().Theme
	s.Equal("#ff0000", theme.Colors.Accent)
	s.Equal(domain.DefaultTheme().Colors.Primary, theme.Colors.Primary)
	s.Equal(domain.PaperLetter, theme.Layout.Paper)

	rec = s.do(http.MethodPatch, "/api/document/theme", `{"layout":{"paper":"A3"}}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestSetTemplate() {
	rec := s.do(http.MethodPut, "/api/template", TemplateRequest{Template: domain.TemplateModern})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(domain.TemplateModern, s.decodeDocument(rec).Template)

	rec = s.do(http.MethodPut, "/api/template", TemplateRequest{Template: "fancy"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(domain.TemplateModern, s.editor.Template())
}

func (s *ServerSuite) TestReplaceDocument() {
	rec := s.do(http.MethodPut, "/api/document", `{"id":"doc_imported","sections":[]}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("doc_imported", s.editor.Snapshot().ID)

	rec = s.do(http.MethodPut, "/api/document", `{"sections":[]}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("doc_imported", s.editor.Snapshot().ID)
}

func (s *ServerSuite) TestReset() {
	s.do(http.MethodPut, "/api/template", TemplateRequest{Template: domain.TemplateModern})
	s.do(http.MethodPut, "/api/document", `{"id":"doc_imported","sections":[]}`)

	rec := s.do(http.MethodPost, "/api/document/reset", nil)
	s.Equal(http.StatusOK, rec.Code)

	resp := s.decodeDocument(rec)
	s.NotEqual("doc_imported", resp.Document.ID)
	s.Len(resp.Document.Sections, 5)
	s.Equal(domain.TemplateClassic, resp.Template)
}

func (s *ServerSuite) TestExportPDF() {
	s.do(http.MethodPatch, "/api/document/theme", `{"layout":{"paper":"Letter"}}`)

	rec := s.do(http.MethodGet, "/api/export.pdf", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), s.editor.Snapshot().ID+".pdf")
	s.Equal("%PDF-1.7 fake", rec.Body.String())
	s.Equal(domain.PaperLetter, s.renderer.lastOpts.Paper)
}

func (s *ServerSuite) TestExportPDF_RendererUnavailable() {
	s.renderer.err = domain.ErrRendererUnavailable
	rec := s.do(http.MethodGet, "/api/export.pdf", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("service_unavailable", s.decodeError(rec).Error)
}

func (s *ServerSuite) TestGenerate() {
	exp := s.section(domain.SectionExperience)

	s.Run("returns result and applies", func() {
		body := map[string]any{
			"section": "experience",
			"role":    "Engineer",
			"apply":   map[string]string{"sectionId": exp.ID, "blockId": exp.Blocks[0].ID},
		}
		rec := s.do(http.MethodPost, "/api/generate", body)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"paragraph":"Shipped things."}`, rec.Body.String())
		s.Equal(exp.ID+"/"+exp.Blocks[0].ID, s.assist.applied)
	})

	s.Run("maps assist errors", func() {
		tests := []struct {
			err    error
			status int
		}{
			{fmt.Errorf("%w: bad section", domain.ErrInvalidInput), http.StatusBadRequest},
			{domain.ErrRateLimited, http.StatusTooManyRequests},
			{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
			{fmt.Errorf("openai: %w", domain.ErrUpstreamUnavailable), http.StatusBadGateway},
		}
		for _, tt := range tests {
			s.assist.err = tt.err
			rec := s.do(http.MethodPost, "/api/generate", map[string]any{"section": "project"})
			s.Equal(tt.status, rec.Code, tt.err.Error())
		}
		s.assist.err = nil
	})
}

func (s *ServerSuite) TestMetrics() {
	header := s.section(domain.SectionHeader)
	s.do(http.MethodPost, "/api/document/field", UpdateFieldRequest{
		SectionID: header.ID, BlockID: header.Blocks[0].ID, Path: "name", Value: "x",
	})

	rec := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `vitae_editor_commits_total{op="update_field"} 1`)
}

func (s *ServerSuite) TestLive() {
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer resp.Body.Close()
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var initial DocumentResponse
	s.Require().NoError(conn.ReadJSON(&initial))
	s.Equal(s.editor.Snapshot().ID, initial.Document.ID)

	s.Require().NoError(s.editor.SetTemplate(domain.TemplateModern))

	var update DocumentResponse
	s.Require().NoError(conn.ReadJSON(&update))
	s.Equal(domain.TemplateModern, update.Template)
}

func TestNew_RequiresEditor(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingEditorService)
}

func TestNew_WithoutOptionalServices(t *testing.T) {
	server, err := New(Config{Editor: services.NewEditor(domain.SampleDocument(seqIDs(), time.Now()))})
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/metrics", "", http.StatusNotFound},
		{http.MethodGet, "/preview", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/export.pdf", "", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/generate", `{"section":"project"}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrInvalidPath, http.StatusBadRequest, "bad_request"},
		{domain.ErrInvalidDocument, http.StatusBadRequest, "bad_request"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{domain.ErrRendererUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{domain.ErrUpstreamUnavailable, http.StatusBadGateway, "bad_gateway"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteError_HidesInternalDescription(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("db password is hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}
