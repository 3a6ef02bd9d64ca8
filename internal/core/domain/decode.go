package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeDocument parses a serialised document after checking that id is a
// non-empty string and sections is an array.
func DecodeDocument(raw []byte) (Document, error) {
	var probe struct {
		ID       json.RawMessage `json:"id"`
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var id string
	if err := json.Unmarshal(probe.ID, &id); err != nil || id == "" {
		return Document{}, fmt.Errorf("%w: id must be a non-empty string", ErrInvalidDocument)
	}
	if trimmed := bytes.TrimSpace(probe.Sections); len(trimmed) == 0 || trimmed[0] != '[' {
		return Document{}, fmt.Errorf("%w: sections must be an array", ErrInvalidDocument)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}
