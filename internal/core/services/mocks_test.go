package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// recordingStateStore implements driven.StateStore and records every Put.
type recordingStateStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	puts    [][]byte
	deletes int
	getErr  error
	putErr  error
}

func newRecordingStateStore() *recordingStateStore {
	return &recordingStateStore{values: make(map[string][]byte)}
}

func (s *recordingStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *recordingStateStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = append([]byte(nil), value...)
	s.puts = append(s.puts, append([]byte(nil), value...))
	return nil
}

func (s *recordingStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.deletes++
	return nil
}

func (s *recordingStateStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

func (s *recordingStateStore) lastPut() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.puts) == 0 {
		return nil
	}
	return s.puts[len(s.puts)-1]
}

func (s *recordingStateStore) stored() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[DocumentKey]
	return v, ok
}

// blockingStateStore holds every Put until release is closed.
type blockingStateStore struct {
	*recordingStateStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStateStore() *blockingStateStore {
	return &blockingStateStore{
		recordingStateStore: newRecordingStateStore(),
		started:             make(chan struct{}),
		release:             make(chan struct{}),
	}
}

func (s *blockingStateStore) Put(ctx context.Context, key string, value []byte) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.recordingStateStore.Put(ctx, key, value)
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.reply, m.err
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	return m.reply, m.err
}

func (m *mockLLMService) ModelName() string           { return "mock-model" }
func (m *mockLLMService) Ping(_ context.Context) error { return m.err }
func (m *mockLLMService) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// mockPDFRenderer implements driven.PDFRenderer for testing.
type mockPDFRenderer struct {
	html     string
	opts     domain.PrintOptions
	deadline bool
	err      error
}

func (m *mockPDFRenderer) RenderPDF(ctx context.Context, html string, opts domain.PrintOptions) ([]byte, error) {
	m.html = html
	m.opts = opts
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.7 mock"), nil
}

func (m *mockPDFRenderer) Close() error { return nil }

// failingConfigStore is a driven.ConfigStore whose writes fail.
type failingConfigStore struct {
	driven.ConfigStore
	err error
}

func (f *failingConfigStore) Set(string, any) error { return f.err }

// stepClock returns times one second apart, starting at base.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
}

func newStepClock() *stepClock {
	return &stepClock{next: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

// seqIDs returns deterministic ids "<prefix>_<n>".
func seqIDs() domain.IDFunc {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

// syncBuffer is a bytes.Buffer safe for a logger writing from a timer
// goroutine while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
