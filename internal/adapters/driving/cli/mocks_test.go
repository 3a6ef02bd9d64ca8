package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/core/services"
)

// seqIDs returns deterministic ids of the form prefix_N.
func seqIDs() domain.IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

// newTestEditor returns an editor holding the sample document.
func newTestEditor() *services.Editor {
	ids := seqIDs()
	doc := domain.SampleDocument(ids, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return services.NewEditor(doc, services.WithIDFunc(ids))
}

// sectionOf returns the first section of the given type.
func sectionOf(t *testing.T, editor driving.EditorService, sectionType string) domain.Section {
	t.Helper()
	doc := editor.Snapshot()
	s, ok := doc.SectionByType(sectionType)
	if !ok {
		t.Fatalf("document has no %s section", sectionType)
	}
	return *s
}

// resetFlags restores every flag of cmd and its children to its default so
// package-level flag variables do not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args against s and returns everything
// written to stdout and stderr.
func execute(t *testing.T, s Services, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), s, stdin, args...)
}

func executeContext(t *testing.T, ctx context.Context, s Services, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	SetServices(s)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		SetServices(Services{})
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// fakeAssist is a hand-written driving.AssistService.
type fakeAssist struct {
	result  *domain.GenerateResult
	err     error
	lastReq domain.GenerateRequest
	applied []string
}

func (f *fakeAssist) Generate(_ context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeAssist) ApplyToBlock(sectionID, blockID string, _ *domain.GenerateResult) error {
	f.applied = append(f.applied, sectionID+"/"+blockID)
	return nil
}

func (f *fakeAssist) Available() bool {
	return f.err == nil
}

// fakeExport is a hand-written driving.ExportService.
type fakeExport struct {
	html string
	pdf  *driving.PDFExport
	err  error
}

func (f *fakeExport) RenderHTML(w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.html)
	return err
}

func (f *fakeExport) ExportPDF(_ context.Context) (*driving.PDFExport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

// fakeFlusher counts flushes.
type fakeFlusher struct {
	calls int
	err   error
}

func (f *fakeFlusher) Flush(_ context.Context) error {
	f.calls++
	return f.err
}

// fakeRunner records that it ran until its context ended.
type fakeRunner struct {
	ran atomic.Bool
	err error
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.ran.Store(true)
	<-ctx.Done()
	return f.err
}

// fakeHealth is a store health check.
type fakeHealth struct{ err error }

func (f *fakeHealth) Health(context.Context) error { return f.err }

// MockSettingsService is a testify mock of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if s, ok := args.Get(0).(*domain.AppSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	return m.Called(settings).Error(0)
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	return m.Called(provider, model, baseURL, apiKey).Error(0)
}

func (m *MockSettingsService) SetStorage(backend domain.StorageBackend, dataDir, redisURL string) error {
	return m.Called(backend, dataDir, redisURL).Error(0)
}

func (m *MockSettingsService) SetDebounce(ms int) error {
	return m.Called(ms).Error(0)
}

func (m *MockSettingsService) Validate() error {
	return m.Called().Error(0)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return m.Called().Get(0).(domain.AppSettings)
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	return m.Called().Error(0)
}
