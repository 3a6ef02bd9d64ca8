// Package cli provides the vitae command-line interface.
package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// flushTimeout bounds the final durable write of one-shot commands.
const flushTimeout = 10 * time.Second

// Flusher writes pending document saves immediately.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Runner is a background task that stops when its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Services are the core services the commands drive.
type Services struct {
	Editor   driving.EditorService
	Assist   driving.AssistService
	Export   driving.ExportService
	Settings driving.SettingsService
	// Persistence is flushed after every command so one-shot edits are not
	// lost to the debounce window.
	Persistence Flusher

	// PromptWatcher reloads prompt templates while a long-running command
	// is up. Optional.
	PromptWatcher Runner
	// Gatherer backs the /metrics endpoint of 'vitae serve'. Optional.
	Gatherer prometheus.Gatherer
	// Health backs the /healthz endpoint of 'vitae serve'. Optional.
	Health httpapi.HealthChecker
}

var (
	editorService   driving.EditorService
	assistService   driving.AssistService
	exportService   driving.ExportService
	settingsService driving.SettingsService
	persistence     Flusher
	promptWatcher   Runner
	gatherer        prometheus.Gatherer
	storeHealth     httpapi.HealthChecker
)

var (
	verboseFlag  bool
	jsonLogsFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "vitae",
	Short: "Structured resume editor",
	Long: `vitae keeps a resume as a structured document of typed sections and
blocks, previews it in the classic or modern template, drafts text with an
LLM and exports print-ready PDFs.

Edit from the command line, the terminal UI, the browser preview served by
'vitae serve', or an MCP client.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
		logger.SetJSON(jsonLogsFlag)
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return flushPending(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogsFlag, "json-logs", false, "Write logs as JSON")
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	editorService = s.Editor
	assistService = s.Assist
	exportService = s.Export
	settingsService = s.Settings
	persistence = s.Persistence
	promptWatcher = s.PromptWatcher
	gatherer = s.Gatherer
	storeHealth = s.Health
}

// SetVersion sets the version reported by 'vitae version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func flushPending(ctx context.Context) error {
	if persistence == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	return persistence.Flush(ctx)
}
