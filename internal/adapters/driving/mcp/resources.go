package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for vitae resources.
	uriScheme = "vitae://"

	documentURI = uriScheme + "document"
	previewURI  = uriScheme + "document/preview"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentURI,
		Name:        "document",
		Description: "The resume document as JSON",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	s.server.AddResource(&mcp.Resource{
		URI:         previewURI,
		Name:        "preview",
		Description: "The resume rendered with the current template",
		MIMEType:    "text/html",
	}, s.handlePreviewResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sections/{sectionId}",
		Name:        "section",
		Description: "A single resume section with its blocks",
		MIMEType:    "application/json",
	}, s.handleSectionResource)
}

// handleDocumentResource returns the current document.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Editor.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePreviewResource returns the rendered HTML page.
func (s *Server) handlePreviewResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Export == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var buf bytes.Buffer
	if err := s.ports.Export.RenderHTML(&buf); err != nil {
		return nil, fmt.Errorf("rendering preview: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/html",
			Text:     buf.String(),
		}},
	}, nil
}

// handleSectionResource returns one section of the document.
func (s *Server) handleSectionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sectionID := extractSectionID(req.Params.URI)
	if sectionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc := s.ports.Editor.Snapshot()
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(doc.Sections[i], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling section: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSectionID extracts the section ID from a URI like vitae://sections/{sectionId}.
func extractSectionID(uri string) string {
	const prefix = uriScheme + "sections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
