// Package tui provides an interactive terminal user interface for vitae.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Editor owns the document.
	Editor driving.EditorService

	// Assist drafts block text with the configured LLM.
	Assist driving.AssistService

	// Export renders the document to PDF.
	Export driving.ExportService

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	editor driving.EditorService,
	assist driving.AssistService,
	export driving.ExportService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Editor:   editor,
		Assist:   assist,
		Export:   export,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
// Only the editor is required; the other views degrade without theirs.
func (p *Ports) Validate() error {
	if p.Editor == nil {
		return ErrMissingEditorService
	}
	return nil
}
