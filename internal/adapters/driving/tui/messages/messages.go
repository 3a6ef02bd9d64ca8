// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/vitae/internal/core/domain"
)

// DocumentChanged carries a committed snapshot from the editor.
type DocumentChanged struct {
	Document domain.Document
	Template domain.Template
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewEditor is the section outline with the live preview.
	ViewEditor
	// ViewSection edits the blocks of one section.
	ViewSection
	// ViewSettings shows the application settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewEditor:
		return "editor"
	case ViewSection:
		return "section"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SectionSelected opens a section for block editing.
type SectionSelected struct {
	SectionID string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// StatusUpdated sets the status bar message. Busy marks a long-running
// operation that a later message completes.
type StatusUpdated struct {
	Text string
	Busy bool
}

// Quit signals the application should exit.
type Quit struct{}

// GenerateCompleted carries AI assist output for a block.
type GenerateCompleted struct {
	SectionID string
	BlockID   string
	Result    *domain.GenerateResult
	Err       error
}

// ExportCompleted signals a PDF was written.
type ExportCompleted struct {
	Path string
	Err  error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a settings change was written.
type SettingsSaved struct {
	Err error
}
