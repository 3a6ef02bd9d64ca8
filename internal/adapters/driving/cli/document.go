package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Import or export the document",
}

var documentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the document as JSON or YAML",
	Long: `Write the whole document as JSON or YAML, to stdout or a file.

Examples:
  vitae document export > resume.json
  vitae document export --format yaml -o resume.yaml`,
	Args: cobra.NoArgs,
	RunE: runDocumentExport,
}

var documentImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the document with one read from a file",
	Long: `Replace the current document with a JSON or YAML document. The format
is chosen by file extension; use "-" to read JSON from stdin.

The document must carry an id and a sections list.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentImport,
}

var (
	documentFormat string
	documentOutput string
)

func init() {
	documentExportCmd.Flags().StringVarP(&documentFormat, "format", "f", "json", "Output format (json or yaml)")
	documentExportCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "Write to file instead of stdout")
	documentCmd.AddCommand(documentExportCmd)
	documentCmd.AddCommand(documentImportCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentExport(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	data, err := encodeDocument(editorService.Snapshot(), documentFormat)
	if err != nil {
		return err
	}

	if documentOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(documentOutput, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", documentOutput, err)
	}
	cmd.PrintErrf("Wrote %s\n", documentOutput)
	return nil
}

func runDocumentImport(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	path := args[0]

	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if isYAML(path) {
		if raw, err = yamlToJSON(raw); err != nil {
			return err
		}
	}

	doc, err := domain.DecodeDocument(raw)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	editorService.ReplaceDocument(doc)
	cmd.Printf("Imported %s (%d sections)\n", doc.ID, len(doc.Sections))
	return nil
}

func encodeDocument(doc domain.Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: format %q is not json or yaml", domain.ErrInvalidInput, format)
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML document as JSON so it goes through the
// same structural checks as a JSON import.
func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return json.Marshal(v)
}
