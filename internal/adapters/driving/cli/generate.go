package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft resume text with the configured LLM",
	Long: `Ask the configured LLM for a paragraph, and for experience entries
optionally a list of bullets, describing one resume entry.

Use --apply to write the result into a block: the paragraph goes to the
block's summary field and bullets to its highlights.

Examples:
  vitae generate --section experience --role "Backend Engineer" --org Acme --bullets
  vitae generate --section project --skills go,redis --style technical --apply sec_2/exp_1`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var generateFlags struct {
	section  string
	role     string
	org      string
	location string
	start    string
	end      string
	skills   []string
	style    string
	lang     string
	bullets  bool
	apply    string
	json     bool
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.section, "section", "s", "experience",
		"Entry kind (experience, education, project, certification, achievement)")
	f.StringVar(&generateFlags.role, "role", "", "Role, degree or title")
	f.StringVar(&generateFlags.org, "org", "", "Company or institution")
	f.StringVar(&generateFlags.location, "location", "", "Location")
	f.StringVar(&generateFlags.start, "start", "", "Start date")
	f.StringVar(&generateFlags.end, "end", "", "End date")
	f.StringSliceVar(&generateFlags.skills, "skills", nil, "Skills to mention (comma-separated)")
	f.StringVar(&generateFlags.style, "style", "", "Tone (concise, impactful, technical)")
	f.StringVar(&generateFlags.lang, "lang", "", "Output language (default en)")
	f.BoolVar(&generateFlags.bullets, "bullets", false, "Also generate bullets (experience only)")
	f.StringVar(&generateFlags.apply, "apply", "", "Write the result to a block, as section-id/block-id")
	f.BoolVar(&generateFlags.json, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if assistService == nil {
		return errors.New("assist service not configured")
	}

	var sectionID, blockID string
	if generateFlags.apply != "" {
		var ok bool
		sectionID, blockID, ok = strings.Cut(generateFlags.apply, "/")
		if !ok || sectionID == "" || blockID == "" {
			return fmt.Errorf("%w: --apply must be section-id/block-id", domain.ErrInvalidInput)
		}
		if editorService == nil {
			return errors.New("editor service not configured")
		}
		if err := requireBlock(sectionID, blockID); err != nil {
			return err
		}
	}

	req := domain.GenerateRequest{
		Section:      domain.AssistSection(generateFlags.section),
		Role:         generateFlags.role,
		Organization: generateFlags.org,
		Location:     generateFlags.location,
		Start:        generateFlags.start,
		End:          generateFlags.end,
		Skills:       generateFlags.skills,
		Style:        domain.AssistStyle(generateFlags.style),
		Lang:         generateFlags.lang,
		WantBullets:  generateFlags.bullets,
	}

	result, err := assistService.Generate(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return fmt.Errorf("%w; run 'vitae settings llm' to configure a provider", err)
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	if generateFlags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		cmd.Println(result.Paragraph)
		for _, b := range result.Bullets {
			cmd.Printf("  - %s\n", b)
		}
	}

	if sectionID != "" {
		if err := assistService.ApplyToBlock(sectionID, blockID, result); err != nil {
			return fmt.Errorf("failed to apply result: %w", err)
		}
		cmd.PrintErrf("Applied to %s\n", blockID)
	}
	return nil
}
