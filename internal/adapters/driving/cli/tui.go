package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui"
	"github.com/custodia-labs/vitae/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for vitae.

The TUI lists the resume sections next to a live text preview. Open a
section to edit its fields, add or remove blocks and draft text with the
configured LLM.

Controls:
  ↑/k, ↓/j - Navigate sections and fields
  K, J     - Move the selected section
  Enter    - Open section / Edit field
  h        - Hide or show a section
  t        - Switch template
  p        - Export PDF
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Prompt templates are reloaded in the background while the TUI is up.
	if promptWatcher != nil {
		go func() {
			if err := promptWatcher.Run(ctx); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	ports := tui.NewPorts(editorService, assistService, exportService, settingsService)

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
