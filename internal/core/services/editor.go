package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/ids"
	"github.com/custodia-labs/vitae/internal/logger"
	"github.com/custodia-labs/vitae/internal/metrics"
)

// Ensure Editor implements the interface.
var _ driving.EditorService = (*Editor)(nil)

// keyTemplate is the preference key the template selector is written to.
const keyTemplate = "editor.template"

// Operation names used in logs and metrics.
const (
	opSetDocument     = "set_document"
	opReplaceDocument = "replace_document"
	opUpdateField     = "update_field"
	opAddBlock        = "add_block"
	opRemoveBlock     = "remove_block"
	opReorderSections = "reorder_sections"
	opSetTheme        = "set_theme"
	opReset           = "reset"
)

// Editor owns the single authoritative document. Every mutation works on
// a deep copy of the current snapshot and commits the copy, so snapshots
// handed out earlier are never modified.
type Editor struct {
	persistence *Persistence
	prefs       driven.ConfigStore
	metrics     *metrics.Metrics
	newID       domain.IDFunc
	now         func() time.Time

	mu        sync.Mutex
	doc       domain.Document
	template  domain.Template
	listeners map[int]driving.Listener
	nextID    int

	// notifyMu keeps listener calls in commit order.
	notifyMu sync.Mutex
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithPersistence schedules a debounced save after every commit.
func WithPersistence(p *Persistence) EditorOption {
	return func(e *Editor) { e.persistence = p }
}

// WithPreferences stores the template selector in cfg and restores it
// on construction.
func WithPreferences(cfg driven.ConfigStore) EditorOption {
	return func(e *Editor) { e.prefs = cfg }
}

// WithMetrics records commits and lookup misses.
func WithMetrics(m *metrics.Metrics) EditorOption {
	return func(e *Editor) { e.metrics = m }
}

// WithClock overrides the time source used for meta.updatedAt.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

// WithIDFunc overrides the identifier generator.
func WithIDFunc(fn domain.IDFunc) EditorOption {
	return func(e *Editor) { e.newID = fn }
}

// NewEditor creates an editor holding doc.
func NewEditor(doc domain.Document, opts ...EditorOption) *Editor {
	e := &Editor{
		newID:     ids.New,
		now:       time.Now,
		doc:       doc.Clone(),
		template:  domain.DefaultTemplate,
		listeners: make(map[int]driving.Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prefs != nil {
		if t := domain.Template(e.prefs.GetString(keyTemplate)); t.IsValid() {
			e.template = t
		}
	}
	return e
}

// Snapshot returns a deep copy of the current document.
func (e *Editor) Snapshot() domain.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Template returns the current template selector.
func (e *Editor) Template() domain.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.template
}

// SetDocument computes the next document from a copy of the current one
// and commits it. This is the only path that schedules a save.
//
// fn runs while the editor is locked and must not call back into the
// editor. If fn panics the lock is released and nothing is committed.
func (e *Editor) SetDocument(fn func(current domain.Document) domain.Document) {
	e.mu.Lock()
	locked := true
	defer func() {
		if locked {
			e.mu.Unlock()
		}
	}()

	next := fn(e.doc.Clone())
	locked = false
	e.commitLocked(opSetDocument, next)
}

// ReplaceDocument commits doc as the new snapshot.
func (e *Editor) ReplaceDocument(doc domain.Document) {
	e.mu.Lock()
	e.commitLocked(opReplaceDocument, doc.Clone())
}

// UpdateField sets a value at path inside a block's fields.
func (e *Editor) UpdateField(sectionID, blockID, path string, value any) error {
	if path == "" {
		return domain.ErrInvalidPath
	}

	e.mu.Lock()
	si := e.doc.SectionIndex(sectionID)
	if si < 0 {
		e.missLocked(opUpdateField, "section %q not found", sectionID)
		return nil
	}
	bi := e.doc.Sections[si].BlockIndex(blockID)
	if bi < 0 {
		e.missLocked(opUpdateField, "block %q not found in section %q", blockID, sectionID)
		return nil
	}

	next := e.doc.Clone()
	block := &next.Sections[si].Blocks[bi]
	if block.Fields == nil {
		block.Fields = domain.Fields{}
	}
	if _, err := domain.SetPath(block.Fields, path, value); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("update field %s: %w", path, err)
	}
	e.commitLocked(opUpdateField, next)
	return nil
}

// AddBlock appends a copy of block to a section under a fresh id.
// The id is prefixed by the block type; any id on block is ignored.
func (e *Editor) AddBlock(sectionID string, block domain.Block) string {
	e.mu.Lock()
	si := e.doc.SectionIndex(sectionID)
	if si < 0 {
		e.missLocked(opAddBlock, "section %q not found", sectionID)
		return ""
	}

	prefix := block.Type
	if prefix == "" {
		prefix = "block"
	}
	added := block.Clone()
	added.ID = e.newID(prefix)
	if added.Fields == nil {
		added.Fields = domain.Fields{}
	}

	next := e.doc.Clone()
	next.Sections[si].Blocks = append(next.Sections[si].Blocks, added)
	e.commitLocked(opAddBlock, next)
	return added.ID
}

// RemoveBlock removes a block from a section. Neither a missing section
// nor a missing block changes the document.
func (e *Editor) RemoveBlock(sectionID, blockID string) {
	e.mu.Lock()
	si := e.doc.SectionIndex(sectionID)
	if si < 0 {
		e.missLocked(opRemoveBlock, "section %q not found", sectionID)
		return
	}
	bi := e.doc.Sections[si].BlockIndex(blockID)
	if bi < 0 {
		e.missLocked(opRemoveBlock, "block %q not found in section %q", blockID, sectionID)
		return
	}

	next := e.doc.Clone()
	blocks := next.Sections[si].Blocks
	next.Sections[si].Blocks = append(blocks[:bi:bi], blocks[bi+1:]...)
	e.commitLocked(opRemoveBlock, next)
}

// ReorderSections rebuilds the section order from sectionIDs. Unknown and
// repeated ids are skipped; sections not listed are dropped.
func (e *Editor) ReorderSections(sectionIDs []string) {
	e.mu.Lock()
	next := e.doc.Clone()

	byID := make(map[string]domain.Section, len(next.Sections))
	for _, s := range next.Sections {
		byID[s.ID] = s
	}

	ordered := make([]domain.Section, 0, len(sectionIDs))
	for _, id := range sectionIDs {
		s, ok := byID[id]
		if !ok {
			continue
		}
		ordered = append(ordered, s)
		delete(byID, id)
	}
	if dropped := len(next.Sections) - len(ordered); dropped > 0 {
		logger.Debug("reorder dropped %d unlisted sections", dropped)
	}
	next.Sections = ordered
	e.commitLocked(opReorderSections, next)
}

// SetTheme merges a partial theme into the current theme.
func (e *Editor) SetTheme(patch domain.ThemePatch) {
	e.mu.Lock()
	next := e.doc.Clone()
	next.Theme = next.Theme.Apply(patch)
	e.commitLocked(opSetTheme, next)
}

// SetTemplate selects the render template. The document is not committed
// and no document save is scheduled; the choice is written to the
// preference store when one is configured.
func (e *Editor) SetTemplate(t domain.Template) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: unknown template %q", domain.ErrInvalidInput, t)
	}

	e.mu.Lock()
	e.template = t
	snapshot := e.doc.Clone()
	e.notifyMu.Lock()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.storeTemplate(t)
	notify(listeners, snapshot, t)
	e.notifyMu.Unlock()
	return nil
}

// ResetToSample discards persisted state and commits a fresh sample with
// the default template. The sample is written immediately rather than
// debounced.
func (e *Editor) ResetToSample(ctx context.Context) {
	logger.Section("Reset Document")

	if e.persistence != nil {
		if err := e.persistence.Clear(ctx); err != nil {
			logger.Error("discarding saved document: %v", err)
		}
	}

	sample := domain.SampleDocument(e.newID, e.now())

	e.mu.Lock()
	e.doc = sample
	e.template = domain.DefaultTemplate
	snapshot := sample.Clone()
	e.notifyMu.Lock()
	listeners := e.listenersLocked()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	e.metrics.IncCommit(opReset)
	if e.persistence != nil {
		if err := e.persistence.WriteNow(ctx, snapshot); err != nil {
			logger.Error("saving sample document: %v", err)
		}
	}
	e.storeTemplate(domain.DefaultTemplate)
	notify(listeners, snapshot, domain.DefaultTemplate)
}

// Subscribe registers fn for commit notifications.
func (e *Editor) Subscribe(fn driving.Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// commitLocked stamps and stores next, then releases mu, schedules the
// save and notifies listeners. Callers hold mu.
func (e *Editor) commitLocked(op string, next domain.Document) {
	next.Meta.UpdatedAt = e.stampLocked()
	e.doc = next
	snapshot := next.Clone()
	tmpl := e.template

	e.notifyMu.Lock()
	listeners := e.listenersLocked()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	logger.Debug("%s: committed document %s", op, snapshot.ID)
	e.metrics.IncCommit(op)
	if e.persistence != nil {
		e.persistence.Save(snapshot)
	}
	notify(listeners, snapshot, tmpl)
}

// stampLocked returns the commit time. updatedAt is strictly increasing
// even when the clock is coarse. Callers hold mu.
func (e *Editor) stampLocked() time.Time {
	now := e.now()
	if prev := e.doc.Meta.UpdatedAt; !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// missLocked logs a lookup miss and releases mu without committing.
func (e *Editor) missLocked(op, format string, args ...any) {
	e.mu.Unlock()
	logger.Warn(op+": "+format+"; ignoring", args...)
	e.metrics.IncLookupMiss(op)
}

func (e *Editor) listenersLocked() []driving.Listener {
	out := make([]driving.Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		out = append(out, fn)
	}
	return out
}

func (e *Editor) storeTemplate(t domain.Template) {
	if e.prefs == nil {
		return
	}
	if err := e.prefs.Set(keyTemplate, string(t)); err != nil {
		logger.Warn("saving template preference: %v", err)
	}
}

func notify(listeners []driving.Listener, doc domain.Document, t domain.Template) {
	for _, fn := range listeners {
		fn(doc.Clone(), t)
	}
}
