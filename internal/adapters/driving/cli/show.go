package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the document outline",
	Long: `Print the document's sections and blocks with their ids.

Ids are what 'field set', 'block remove' and 'section reorder' take.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var showJSON bool

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full document as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	doc := editorService.Snapshot()

	if showJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	if doc.Meta.Title != "" {
		cmd.Printf("  Title:    %s\n", doc.Meta.Title)
	}
	cmd.Printf("  Template: %s\n", editorService.Template())
	cmd.Printf("  Paper:    %s\n", doc.Theme.Layout.Paper)
	cmd.Printf("  Updated:  %s\n", doc.Meta.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()

	for _, s := range doc.Sections {
		hidden := ""
		if s.Hidden {
			hidden = " (hidden)"
		}
		cmd.Printf("%s  %s %q%s\n", s.ID, s.Type, s.Title, hidden)
		for _, b := range s.Blocks {
			cmd.Printf("    %s  %s\n", b.ID, blockLabel(b))
		}
	}

	cmd.Printf("\nTotal: %d sections\n", len(doc.Sections))
	return nil
}

// blockLabel is a one-line description of a block for listings.
func blockLabel(b domain.Block) string {
	for _, key := range []string{"name", "role", "degree", "title", "text", "summary"} {
		if v := b.Fields.String(key); v != "" {
			return truncate(v, 60)
		}
	}
	if items := b.Fields.Strings("items"); len(items) > 0 {
		return truncate(strings.Join(items, ", "), 60)
	}
	return fmt.Sprintf("(%s)", b.Type)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
