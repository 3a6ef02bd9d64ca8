package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct{}

// UpdateFieldInput is the input schema for the update_field tool.
type UpdateFieldInput struct {
	SectionID string `json:"section_id" jsonschema:"id of the section holding the block"`
	BlockID   string `json:"block_id" jsonschema:"id of the block to edit"`
	Path      string `json:"path" jsonschema:"dot-separated field path, e.g. name or links.github"`
	Value     any    `json:"value" jsonschema:"new value: string, number, boolean, list or object"`
}

// AddBlockInput is the input schema for the add_block tool.
type AddBlockInput struct {
	SectionID string         `json:"section_id" jsonschema:"id of the section to append to"`
	Type      string         `json:"type" jsonschema:"block type, e.g. experience or education"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"initial block fields"`
}

// RemoveBlockInput is the input schema for the remove_block tool.
type RemoveBlockInput struct {
	SectionID string `json:"section_id" jsonschema:"id of the section holding the block"`
	BlockID   string `json:"block_id" jsonschema:"id of the block to remove"`
}

// ReorderSectionsInput is the input schema for the reorder_sections tool.
type ReorderSectionsInput struct {
	SectionIDs []string `json:"section_ids" jsonschema:"every section id in the new order; unlisted sections are removed"`
}

// SetThemeInput is the input schema for the set_theme tool.
type SetThemeInput struct {
	FontFamily string  `json:"font_family,omitempty" jsonschema:"font family"`
	FontScale  float64 `json:"font_scale,omitempty" jsonschema:"font scale, 1 is 100%"`
	Primary    string  `json:"primary,omitempty" jsonschema:"primary colour"`
	Accent     string  `json:"accent,omitempty" jsonschema:"accent colour"`
	Muted      string  `json:"muted,omitempty" jsonschema:"muted colour"`
	Paper      string  `json:"paper,omitempty" jsonschema:"paper size: A4 or Letter"`
	Columns    int     `json:"columns,omitempty" jsonschema:"number of columns: 1 or 2"`
}

// SetTemplateInput is the input schema for the set_template tool.
type SetTemplateInput struct {
	Template string `json:"template" jsonschema:"template name: classic or modern"`
}

// GenerateTextInput is the input schema for the generate_text tool.
type GenerateTextInput struct {
	Section      string   `json:"section" jsonschema:"experience, education, project, certification or achievement"`
	Role         string   `json:"role,omitempty" jsonschema:"role, degree or title"`
	Organization string   `json:"organization,omitempty" jsonschema:"company or institution"`
	Location     string   `json:"location,omitempty"`
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Style        string   `json:"style,omitempty" jsonschema:"concise, impactful or technical"`
	Lang         string   `json:"lang,omitempty" jsonschema:"output language, default en"`
	Bullets      bool     `json:"bullets,omitempty" jsonschema:"also return bullets (experience only)"`
	ApplyTo      string   `json:"apply_to_block,omitempty" jsonschema:"block id to write the result into"`
	ApplySection string   `json:"apply_to_section,omitempty" jsonschema:"section id of apply_to_block"`
}

// EditOutput is the output schema for the editing tools.
type EditOutput struct {
	Message string `json:"message"`
	BlockID string `json:"block_id,omitempty"`
}

// GenerateTextOutput is the output schema for the generate_text tool.
type GenerateTextOutput struct {
	Paragraph string   `json:"paragraph"`
	Bullets   []string `json:"bullets,omitempty"`
	Applied   bool     `json:"applied"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get the resume document with section and block ids",
	}, s.handleGetDocument)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_field",
		Description: "Set a field on a resume block",
	}, s.handleUpdateField)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_block",
		Description: "Append a block to a resume section",
	}, s.handleAddBlock)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_block",
		Description: "Remove a block from a resume section",
	}, s.handleRemoveBlock)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reorder_sections",
		Description: "Set the order of resume sections",
	}, s.handleReorderSections)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_theme",
		Description: "Change theme values; omitted values are kept",
	}, s.handleSetTheme)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_template",
		Description: "Select the resume template",
	}, s.handleSetTemplate)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_text",
		Description: "Draft a paragraph and bullets for a resume entry with the configured LLM",
	}, s.handleGenerateText)
}

// handleGetDocument returns the document as JSON text.
func (s *Server) handleGetDocument(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetDocumentInput,
) (*mcp.CallToolResult, any, error) {
	payload := struct {
		Template domain.Template `json:"template"`
		Document domain.Document `json:"document"`
	}{
		Template: s.ports.Editor.Template(),
		Document: s.ports.Editor.Snapshot(),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) handleUpdateField(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input UpdateFieldInput,
) (*mcp.CallToolResult, EditOutput, error) {
	if err := s.requireBlock(input.SectionID, input.BlockID); err != nil {
		return nil, EditOutput{}, err
	}
	if err := s.ports.Editor.UpdateField(input.SectionID, input.BlockID, input.Path, input.Value); err != nil {
		return nil, EditOutput{}, err
	}
	return nil, EditOutput{Message: fmt.Sprintf("set %s on %s", input.Path, input.BlockID)}, nil
}

func (s *Server) handleAddBlock(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AddBlockInput,
) (*mcp.CallToolResult, EditOutput, error) {
	if input.Type == "" {
		return nil, EditOutput{}, fmt.Errorf("%w: type is required", domain.ErrInvalidInput)
	}
	id := s.ports.Editor.AddBlock(input.SectionID, domain.Block{Type: input.Type, Fields: input.Fields})
	if id == "" {
		return nil, EditOutput{}, fmt.Errorf("section %s: %w", input.SectionID, domain.ErrNotFound)
	}
	return nil, EditOutput{Message: "block added", BlockID: id}, nil
}

func (s *Server) handleRemoveBlock(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RemoveBlockInput,
) (*mcp.CallToolResult, EditOutput, error) {
	if err := s.requireBlock(input.SectionID, input.BlockID); err != nil {
		return nil, EditOutput{}, err
	}
	s.ports.Editor.RemoveBlock(input.SectionID, input.BlockID)
	return nil, EditOutput{Message: "block removed", BlockID: input.BlockID}, nil
}

func (s *Server) handleReorderSections(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ReorderSectionsInput,
) (*mcp.CallToolResult, EditOutput, error) {
	if len(input.SectionIDs) == 0 {
		return nil, EditOutput{}, fmt.Errorf("%w: section_ids is empty", domain.ErrInvalidInput)
	}
	doc := s.ports.Editor.Snapshot()
	for _, id := range input.SectionIDs {
		if doc.SectionIndex(id) < 0 {
			return nil, EditOutput{}, fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
		}
	}
	s.ports.Editor.ReorderSections(input.SectionIDs)
	return nil, EditOutput{Message: fmt.Sprintf("%d sections ordered", len(input.SectionIDs))}, nil
}

func (s *Server) handleSetTheme(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetThemeInput,
) (*mcp.CallToolResult, EditOutput, error) {
	patch, err := input.patch()
	if err != nil {
		return nil, EditOutput{}, err
	}
	if patch.IsEmpty() {
		return nil, EditOutput{}, fmt.Errorf("%w: no theme values given", domain.ErrInvalidInput)
	}
	s.ports.Editor.SetTheme(patch)
	return nil, EditOutput{Message: "theme updated"}, nil
}

func (s *Server) handleSetTemplate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetTemplateInput,
) (*mcp.CallToolResult, EditOutput, error) {
	if err := s.ports.Editor.SetTemplate(domain.Template(input.Template)); err != nil {
		return nil, EditOutput{}, err
	}
	return nil, EditOutput{Message: "template set to " + input.Template}, nil
}

func (s *Server) handleGenerateText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateTextInput,
) (*mcp.CallToolResult, GenerateTextOutput, error) {
	if s.ports.Assist == nil {
		return nil, GenerateTextOutput{}, domain.ErrLLMUnavailable
	}
	if input.ApplyTo != "" {
		if err := s.requireBlock(input.ApplySection, input.ApplyTo); err != nil {
			return nil, GenerateTextOutput{}, err
		}
	}

	result, err := s.ports.Assist.Generate(ctx, domain.GenerateRequest{
		Section:      domain.AssistSection(input.Section),
		Role:         input.Role,
		Organization: input.Organization,
		Location:     input.Location,
		Start:        input.Start,
		End:          input.End,
		Skills:       input.Skills,
		Style:        domain.AssistStyle(input.Style),
		Lang:         input.Lang,
		WantBullets:  input.Bullets,
	})
	if err != nil {
		return nil, GenerateTextOutput{}, err
	}

	output := GenerateTextOutput{Paragraph: result.Paragraph, Bullets: result.Bullets}
	if input.ApplyTo != "" {
		if err := s.ports.Assist.ApplyToBlock(input.ApplySection, input.ApplyTo, result); err != nil {
			return nil, GenerateTextOutput{}, err
		}
		output.Applied = true
	}
	return nil, output, nil
}

// requireBlock reports a missing section or block as an error; the editor
// itself treats misses as no-ops.
func (s *Server) requireBlock(sectionID, blockID string) error {
	doc := s.ports.Editor.Snapshot()
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}
	if doc.Sections[i].BlockIndex(blockID) < 0 {
		return fmt.Errorf("block %s: %w", blockID, domain.ErrNotFound)
	}
	return nil
}

func (in SetThemeInput) patch() (domain.ThemePatch, error) {
	var p domain.ThemePatch
	if in.FontFamily != "" {
		p.FontFamily = &in.FontFamily
	}
	if in.FontScale != 0 {
		if in.FontScale < 0 {
			return p, fmt.Errorf("%w: font_scale must be positive", domain.ErrInvalidInput)
		}
		p.FontScale = &in.FontScale
	}
	if in.Primary != "" || in.Accent != "" || in.Muted != "" {
		p.Colors = &domain.ColorsPatch{}
		if in.Primary != "" {
			p.Colors.Primary = &in.Primary
		}
		if in.Accent != "" {
			p.Colors.Accent = &in.Accent
		}
		if in.Muted != "" {
			p.Colors.Muted = &in.Muted
		}
	}
	if in.Paper != "" || in.Columns != 0 {
		p.Layout = &domain.LayoutPatch{}
		if in.Paper != "" {
			paper := domain.Paper(in.Paper)
			if !paper.IsValid() {
				return p, fmt.Errorf("%w: paper %q is not A4 or Letter", domain.ErrInvalidInput, in.Paper)
			}
			p.Layout.Paper = &paper
		}
		if in.Columns != 0 {
			if in.Columns < 1 || in.Columns > 2 {
				return p, fmt.Errorf("%w: columns must be 1 or 2", domain.ErrInvalidInput)
			}
			p.Layout.Columns = &in.Columns
		}
	}
	return p, nil
}
