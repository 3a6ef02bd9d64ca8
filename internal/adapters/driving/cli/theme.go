package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the document theme",
	RunE:  runThemeShow,
}

var themeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change theme values",
	Long: `Change theme values. Only the flags given are changed; every other
value keeps its current setting.

Examples:
  vitae theme set --accent "#0f766e" --paper Letter
  vitae theme set --columns 2 --gutter 32`,
	Args: cobra.NoArgs,
	RunE: runThemeSet,
}

var themeFlags struct {
	font      string
	fontScale float64
	primary   string
	accent    string
	muted     string
	sectionY  int
	itemY     int
	paper     string
	columns   int
	gutter    int
	icons     bool
}

func init() {
	f := themeSetCmd.Flags()
	f.StringVar(&themeFlags.font, "font", "", "Font family")
	f.Float64Var(&themeFlags.fontScale, "font-scale", 1, "Font scale (1 = 100%)")
	f.StringVar(&themeFlags.primary, "primary", "", "Primary colour")
	f.StringVar(&themeFlags.accent, "accent", "", "Accent colour")
	f.StringVar(&themeFlags.muted, "muted", "", "Muted colour")
	f.IntVar(&themeFlags.sectionY, "section-spacing", 0, "Space between sections in pixels")
	f.IntVar(&themeFlags.itemY, "item-spacing", 0, "Space between items in pixels")
	f.StringVar(&themeFlags.paper, "paper", "", "Paper size (A4 or Letter)")
	f.IntVar(&themeFlags.columns, "columns", 1, "Number of columns")
	f.IntVar(&themeFlags.gutter, "gutter", 0, "Column gutter in pixels")
	f.BoolVar(&themeFlags.icons, "icons", true, "Show contact icons")

	themeCmd.AddCommand(themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}

func runThemeShow(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	t := editorService.Snapshot().Theme
	cmd.Println("[Theme]")
	cmd.Printf("  Font:    %s (x%.2f)\n", t.FontFamily, t.FontScale)
	cmd.Printf("  Colors:  primary %s, accent %s, muted %s\n", t.Colors.Primary, t.Colors.Accent, t.Colors.Muted)
	cmd.Printf("  Spacing: section %dpx, item %dpx\n", t.Spacing.SectionY, t.Spacing.ItemY)
	cmd.Printf("  Layout:  %s, %d column(s), gutter %dpx, icons %t\n",
		t.Layout.Paper, t.Layout.Columns, t.Layout.Gutter, t.Layout.ShowIcons)
	return nil
}

func runThemeSet(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	patch, err := themePatchFromFlags(cmd)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("no theme values given; see 'vitae theme set --help'")
	}

	editorService.SetTheme(patch)
	return runThemeShow(cmd, nil)
}

// themePatchFromFlags builds a patch from the flags the user set.
func themePatchFromFlags(cmd *cobra.Command) (domain.ThemePatch, error) {
	var p domain.ThemePatch
	changed := cmd.Flags().Changed

	if changed("font") {
		p.FontFamily = &themeFlags.font
	}
	if changed("font-scale") {
		if themeFlags.fontScale <= 0 {
			return p, fmt.Errorf("%w: font scale must be positive", domain.ErrInvalidInput)
		}
		p.FontScale = &themeFlags.fontScale
	}

	if changed("primary") || changed("accent") || changed("muted") {
		p.Colors = &domain.ColorsPatch{}
		if changed("primary") {
			p.Colors.Primary = &themeFlags.primary
		}
		if changed("accent") {
			p.Colors.Accent = &themeFlags.accent
		}
		if changed("muted") {
			p.Colors.Muted = &themeFlags.muted
		}
	}

	if changed("section-spacing") || changed("item-spacing") {
		p.Spacing = &domain.SpacingPatch{}
		if changed("section-spacing") {
			p.Spacing.SectionY = &themeFlags.sectionY
		}
		if changed("item-spacing") {
			p.Spacing.ItemY = &themeFlags.itemY
		}
	}

	if changed("paper") || changed("columns") || changed("gutter") || changed("icons") {
		p.Layout = &domain.LayoutPatch{}
		if changed("paper") {
			paper, err := parsePaper(themeFlags.paper)
			if err != nil {
				return p, err
			}
			p.Layout.Paper = &paper
		}
		if changed("columns") {
			if themeFlags.columns < 1 || themeFlags.columns > 2 {
				return p, fmt.Errorf("%w: columns must be 1 or 2", domain.ErrInvalidInput)
			}
			p.Layout.Columns = &themeFlags.columns
		}
		if changed("gutter") {
			p.Layout.Gutter = &themeFlags.gutter
		}
		if changed("icons") {
			p.Layout.ShowIcons = &themeFlags.icons
		}
	}

	return p, nil
}

func parsePaper(s string) (domain.Paper, error) {
	for _, p := range []domain.Paper{domain.PaperA4, domain.PaperLetter} {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: paper %q is not A4 or Letter", domain.ErrInvalidInput, s)
}
