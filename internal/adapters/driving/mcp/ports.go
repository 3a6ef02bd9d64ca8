package mcp

import (
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Editor owns the document.
	Editor driving.EditorService

	// Assist drafts text with the configured LLM.
	Assist driving.AssistService

	// Export renders the document.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Editor == nil {
		return ErrMissingEditorService
	}
	// Assist and Export are optional: their tools report unavailability.
	return nil
}
