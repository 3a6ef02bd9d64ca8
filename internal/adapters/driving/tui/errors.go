package tui

import "errors"

// ErrMissingEditorService is returned when the editor service is not provided.
var ErrMissingEditorService = errors.New("tui: editor service is required")
