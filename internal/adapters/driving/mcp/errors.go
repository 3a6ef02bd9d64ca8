// Package mcp provides an MCP (Model Context Protocol) server adapter for vitae.
// It lets AI assistants read the resume document and edit it through the editor.
package mcp

import "errors"

// ErrMissingEditorService is returned when the editor service is not provided.
var ErrMissingEditorService = errors.New("mcp: editor service is required")
