package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the resume to PDF or HTML",
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Export the resume as PDF",
	Long: `Print the resume to PDF with a headless Chrome. The page size follows
the theme's paper setting. Without -o the file is named after the document id.

Set the browser with 'vitae settings export --chrome-path' if it is not on PATH.`,
	Args: cobra.NoArgs,
	RunE: runExportPDF,
}

var exportHTMLCmd = &cobra.Command{
	Use:   "html",
	Short: "Export the resume as a standalone HTML page",
	Args:  cobra.NoArgs,
	RunE:  runExportHTML,
}

var exportOutput string

func init() {
	exportPDFCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file")
	exportHTMLCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.AddCommand(exportPDFCmd)
	exportCmd.AddCommand(exportHTMLCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportPDF(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	pdf, err := exportService.ExportPDF(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRendererUnavailable) {
			return fmt.Errorf("%w; install Chrome or run 'vitae settings export --chrome-path'", err)
		}
		return fmt.Errorf("export failed: %w", err)
	}

	path := exportOutput
	if path == "" {
		path = pdf.FileName()
	}
	if err := os.WriteFile(path, pdf.Data, 0o644); err != nil { //nolint:gosec // exported document is meant to be shared
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cmd.Printf("Exported %s (%s, %d bytes)\n", path, pdf.Paper, len(pdf.Data))
	return nil
}

func runExportHTML(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	if exportOutput == "" {
		return exportService.RenderHTML(cmd.OutOrStdout())
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	if err := exportService.RenderHTML(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	cmd.Printf("Exported %s\n", exportOutput)
	return nil
}
