package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/ids"
	"github.com/custodia-labs/vitae/internal/logger"
	"github.com/custodia-labs/vitae/internal/metrics"
)

// DocumentKey is the fixed key the document is stored under.
const DocumentKey = "resume:document"

// Persistence loads the document at startup and saves it after every
// commit, debounced. Only the last document of a burst is written.
//
// Every scheduled or direct write carries a generation number; a write
// whose generation is not newer than the last one stored (or cleared) is
// dropped, so a slow write can never overwrite a newer document or
// resurrect a cleared one.
type Persistence struct {
	store    driven.StateStore
	debounce time.Duration
	metrics  *metrics.Metrics
	newID    domain.IDFunc
	now      func() time.Time

	mu         sync.Mutex
	timer      *time.Timer
	pending    *domain.Document
	pendingGen uint64
	gen        uint64
	written    uint64

	// inflight counts timer writes that have taken the pending document
	// but not finished storing it. idle is signalled when it drops to 0.
	inflight int
	idle     *sync.Cond

	// writeMu serialises store calls.
	writeMu sync.Mutex
}

// NewPersistence creates a persistence gateway over store.
// A non-positive debounce uses domain.DefaultDebounceMS.
func NewPersistence(store driven.StateStore, debounce time.Duration, m *metrics.Metrics) *Persistence {
	if debounce <= 0 {
		debounce = domain.DefaultDebounceMS * time.Millisecond
	}
	p := &Persistence{
		store:    store,
		debounce: debounce,
		metrics:  m,
		newID:    ids.New,
		now:      time.Now,
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Debounce returns the quiescence window.
func (p *Persistence) Debounce() time.Duration {
	return p.debounce
}

// Load returns the persisted document. Missing, unreadable or invalid
// state yields a freshly materialised sample.
func (p *Persistence) Load(ctx context.Context) domain.Document {
	logger.Section("Load Document")

	raw, err := p.store.Get(ctx, DocumentKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Info("no saved document, using sample")
		return p.Sample()
	case err != nil:
		logger.Warn("reading saved document: %v; using sample", err)
		return p.Sample()
	}

	doc, err := domain.DecodeDocument(raw)
	if err != nil {
		logger.Warn("saved document rejected: %v; using sample", err)
		return p.Sample()
	}

	logger.Debug("loaded document %s with %d sections", doc.ID, len(doc.Sections))
	return doc
}

// Sample materialises the built-in sample with fresh ids and timestamps.
func (p *Persistence) Sample() domain.Document {
	return domain.SampleDocument(p.newID, p.now())
}

// Save schedules a durable write of doc after the debounce window,
// superseding any write still pending. It never blocks on I/O.
func (p *Persistence) Save(doc domain.Document) {
	snapshot := doc.Clone()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	gen := p.gen
	p.pending = &snapshot
	p.pendingGen = gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() { p.fire(gen) })
}

// fire writes the pending document if no newer call superseded it.
func (p *Persistence) fire(gen uint64) {
	p.mu.Lock()
	if p.pending == nil || p.pendingGen != gen {
		p.mu.Unlock()
		return
	}
	doc := *p.pending
	p.pending = nil
	p.timer = nil
	p.inflight++
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inflight--
		if p.inflight == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}()

	if err := p.writeAt(context.Background(), gen, doc); err != nil {
		logger.Error("saving document %s: %v", doc.ID, err)
	}
}

// Pending reports whether a debounced write is scheduled.
func (p *Persistence) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Flush writes any pending document now and waits for a debounced write
// that is already running. Used before exit.
func (p *Persistence) Flush(ctx context.Context) error {
	p.mu.Lock()
	doc, gen := p.pending, p.pendingGen
	p.cancelPending()
	p.mu.Unlock()

	var err error
	if doc != nil {
		err = p.writeAt(ctx, gen, *doc)
	}

	p.mu.Lock()
	for p.inflight > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
	return err
}

// WriteNow cancels any pending write and stores doc immediately.
func (p *Persistence) WriteNow(ctx context.Context, doc domain.Document) error {
	p.mu.Lock()
	p.cancelPending()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	return p.writeAt(ctx, gen, doc)
}

// Clear cancels any pending write and deletes the persisted document.
func (p *Persistence) Clear(ctx context.Context) error {
	p.mu.Lock()
	p.cancelPending()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if gen > p.written {
		p.written = gen
	}
	p.mu.Unlock()

	if err := p.store.Delete(ctx, DocumentKey); err != nil {
		return fmt.Errorf("clear document: %w", err)
	}
	return nil
}

// Close flushes pending state.
func (p *Persistence) Close(ctx context.Context) error {
	return p.Flush(ctx)
}

// cancelPending stops the timer and drops the pending document.
// Callers hold mu.
func (p *Persistence) cancelPending() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pending = nil
}

// writeAt stores doc unless a write or clear with a newer generation
// already happened.
func (p *Persistence) writeAt(ctx context.Context, gen uint64, doc domain.Document) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	stale := gen <= p.written
	if !stale {
		p.written = gen
	}
	p.mu.Unlock()
	if stale {
		logger.Debug("skipping superseded write of document %s", doc.ID)
		return nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		p.metrics.IncPersistenceWrite(err)
		return fmt.Errorf("encode document: %w", err)
	}
	err = p.store.Put(ctx, DocumentKey, raw)
	p.metrics.IncPersistenceWrite(err)
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	logger.Debug("saved document %s (%d bytes)", doc.ID, len(raw))
	return nil
}
