package driving

import (
	"context"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// EditorService owns the authoritative resume document and is the only way
// to change it. Every mutation commits a new snapshot; lookups that miss a
// section or block are logged no-ops.
type EditorService interface {
	// Snapshot returns a deep copy of the current document.
	Snapshot() domain.Document

	// Template returns the current template selector.
	Template() domain.Template

	// SetDocument computes a new document from the current one, stamps
	// meta.updatedAt, commits it and schedules a durable save.
	SetDocument(fn func(current domain.Document) domain.Document)

	// ReplaceDocument commits doc as the new snapshot.
	ReplaceDocument(doc domain.Document)

	// UpdateField sets the value at a dot-separated path inside a block's
	// fields. Returns an error only for an unusable path.
	UpdateField(sectionID, blockID, path string, value any) error

	// AddBlock appends a copy of block to a section under a fresh id scoped
	// by its type. Returns the new id, or "" if the section is absent.
	AddBlock(sectionID string, block domain.Block) string

	// RemoveBlock removes a block from a section.
	RemoveBlock(sectionID, blockID string)

	// ReorderSections rebuilds the section order from ids. Unknown ids are
	// skipped and sections not listed are dropped.
	ReorderSections(ids []string)

	// SetTheme merges a partial theme into the current theme.
	SetTheme(patch domain.ThemePatch)

	// SetTemplate selects the render template. The template is not part of
	// the document and does not schedule a document save.
	SetTemplate(t domain.Template) error

	// ResetToSample discards persisted state, commits a fresh sample and
	// writes it immediately. Storage failures are logged, not returned.
	ResetToSample(ctx context.Context)

	// Subscribe registers fn to be called after every commit and template
	// change. The returned func unregisters it.
	Subscribe(fn Listener) (unsubscribe func())
}

// Listener receives the committed snapshot and current template.
// Listeners run synchronously after the editor lock is released and must
// not block.
type Listener func(doc domain.Document, tmpl domain.Template)
