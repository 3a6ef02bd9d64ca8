package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Edit block fields",
}

var fieldSetCmd = &cobra.Command{
	Use:   "set [section-id] [block-id] [path] [value]",
	Short: "Set a block field",
	Long: `Set a field on a block. The path is dot-separated; missing
intermediate records are created.

Examples:
  vitae field set sec_1 hdr_1 name "Jane Doe"
  vitae field set sec_2 exp_1 highlights '["Shipped X","Cut Y"]' --json
  vitae field set sec_1 hdr_1 links.github https://github.com/jane`,
	Args: cobra.ExactArgs(4),
	RunE: runFieldSet,
}

var fieldJSON bool

var fieldGetCmd = &cobra.Command{
	Use:   "get [section-id] [block-id] [path]",
	Short: "Print a block field",
	Long: `Print the value at a dot-separated path inside a block. Strings are
printed as is; other values as JSON.

Example:
  vitae field get sec_1 hdr_1 links.github`,
	Args: cobra.ExactArgs(3),
	RunE: runFieldGet,
}

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Add or remove blocks",
}

var blockAddCmd = &cobra.Command{
	Use:   "add [section-id] [type]",
	Short: "Append a block to a section",
	Long: `Append a new block of the given type. Fields are given as key=value
pairs and the new block id is printed.

The section may be given by id or by type, in which case the first
section of that type is used.

Examples:
  vitae block add sec_2 experience -f role=Engineer -f company=Acme
  vitae block add skills skills -f name=Languages`,
	Args: cobra.ExactArgs(2),
	RunE: runBlockAdd,
}

var blockFields []string

var blockRemoveCmd = &cobra.Command{
	Use:   "remove [section-id] [block-id]",
	Short: "Remove a block",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlockRemove,
}

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Reorder or hide sections",
}

var sectionReorderCmd = &cobra.Command{
	Use:   "reorder [section-id...]",
	Short: "Set the section order",
	Long: `Set the section order. Pass every section id: sections that are not
listed are removed from the document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSectionReorder,
}

var sectionHideCmd = &cobra.Command{
	Use:   "hide [section-id]",
	Short: "Hide a section from the rendered resume",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setSectionHidden(cmd, args[0], true) },
}

var sectionShowCmd = &cobra.Command{
	Use:   "unhide [section-id]",
	Short: "Show a hidden section again",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setSectionHidden(cmd, args[0], false) },
}

var allowDrop bool

var templateCmd = &cobra.Command{
	Use:   "template [name]",
	Short: "Show or select the template",
	Long:  `Without an argument, print the current template. Available: classic, modern.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemplate,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the document and start from the sample",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

var resetYes bool

func init() {
	fieldSetCmd.Flags().BoolVar(&fieldJSON, "json", false, "Parse the value as JSON")
	fieldCmd.AddCommand(fieldSetCmd)
	fieldCmd.AddCommand(fieldGetCmd)

	blockAddCmd.Flags().StringArrayVarP(&blockFields, "field", "f", nil, "Field as key=value (repeatable)")
	blockCmd.AddCommand(blockAddCmd)
	blockCmd.AddCommand(blockRemoveCmd)

	sectionReorderCmd.Flags().BoolVar(&allowDrop, "drop", false, "Allow dropping sections not listed")
	sectionCmd.AddCommand(sectionReorderCmd)
	sectionCmd.AddCommand(sectionHideCmd)
	sectionCmd.AddCommand(sectionShowCmd)

	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(sectionCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(resetCmd)
}

func runFieldSet(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	sectionID, blockID, path := args[0], args[1], args[2]

	if err := requireBlock(sectionID, blockID); err != nil {
		return err
	}

	value, err := parseValue(args[3], fieldJSON)
	if err != nil {
		return err
	}

	if err := editorService.UpdateField(sectionID, blockID, path, value); err != nil {
		return fmt.Errorf("failed to set field: %w", err)
	}

	cmd.Printf("Set %s on %s\n", path, blockID)
	return nil
}

func runFieldGet(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	sectionID, blockID, path := args[0], args[1], args[2]

	if err := requireBlock(sectionID, blockID); err != nil {
		return err
	}

	doc := editorService.Snapshot()
	section := doc.Sections[doc.SectionIndex(sectionID)]
	block := section.Blocks[section.BlockIndex(blockID)]

	value, ok := domain.LookupPath(block.Fields, path)
	if !ok {
		return fmt.Errorf("field %s on %s: %w", path, blockID, domain.ErrNotFound)
	}
	if str, isString := value.(string); isString {
		cmd.Println(str)
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode field: %w", err)
	}
	cmd.Println(string(raw))
	return nil
}

func runBlockAdd(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	blockType := args[1]

	sectionID, err := resolveSection(args[0])
	if err != nil {
		return err
	}

	fields, err := parseFieldPairs(blockFields)
	if err != nil {
		return err
	}

	id := editorService.AddBlock(sectionID, domain.Block{Type: blockType, Fields: fields})
	if id == "" {
		return fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}

	cmd.Println(id)
	return nil
}

func runBlockRemove(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	sectionID, blockID := args[0], args[1]

	if err := requireBlock(sectionID, blockID); err != nil {
		return err
	}

	editorService.RemoveBlock(sectionID, blockID)
	cmd.Printf("Removed %s\n", blockID)
	return nil
}

func runSectionReorder(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	doc := editorService.Snapshot()
	listed := make(map[string]bool, len(args))
	for _, id := range args {
		if doc.SectionIndex(id) < 0 {
			return fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
		}
		listed[id] = true
	}

	var missing []string
	for _, s := range doc.Sections {
		if !listed[s.ID] {
			missing = append(missing, s.ID)
		}
	}
	if len(missing) > 0 && !allowDrop {
		return fmt.Errorf("sections %s are not listed and would be removed; pass --drop to confirm",
			strings.Join(missing, ", "))
	}

	editorService.ReorderSections(args)
	cmd.Printf("Section order: %s\n", strings.Join(args, ", "))
	return nil
}

func setSectionHidden(cmd *cobra.Command, sectionID string, hidden bool) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}
	if err := requireSection(sectionID); err != nil {
		return err
	}

	editorService.SetDocument(func(doc domain.Document) domain.Document {
		if i := doc.SectionIndex(sectionID); i >= 0 {
			doc.Sections[i].Hidden = hidden
		}
		return doc
	})

	state := "visible"
	if hidden {
		state = "hidden"
	}
	cmd.Printf("Section %s is now %s\n", sectionID, state)
	return nil
}

func runTemplate(cmd *cobra.Command, args []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	if len(args) == 0 {
		current := editorService.Template()
		for _, t := range domain.AllTemplates() {
			marker := " "
			if t == current {
				marker = "*"
			}
			cmd.Printf("%s %s\n", marker, t)
		}
		return nil
	}

	t := domain.Template(strings.ToLower(args[0]))
	if err := editorService.SetTemplate(t); err != nil {
		return fmt.Errorf("failed to set template: %w", err)
	}
	cmd.Printf("Template set to %s\n", t)
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if editorService == nil {
		return errors.New("editor service not configured")
	}

	if !resetYes {
		cmd.Print("This discards the current document. Continue? [y/N]: ")
		if !confirm(cmd) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	editorService.ResetToSample(cmd.Context())
	cmd.Printf("Document reset to the sample (%s)\n", editorService.Snapshot().ID)
	return nil
}

// requireSection turns the editor's silent miss into a user-facing error.
func requireSection(sectionID string) error {
	doc := editorService.Snapshot()
	if doc.SectionIndex(sectionID) < 0 {
		return fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}
	return nil
}

// resolveSection accepts a section id or a section type and returns the id.
func resolveSection(ref string) (string, error) {
	doc := editorService.Snapshot()
	if doc.SectionIndex(ref) >= 0 {
		return ref, nil
	}
	if s, ok := doc.SectionByType(ref); ok {
		return s.ID, nil
	}
	return "", fmt.Errorf("section %s: %w", ref, domain.ErrNotFound)
}

func requireBlock(sectionID, blockID string) error {
	doc := editorService.Snapshot()
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}
	if doc.Sections[i].BlockIndex(blockID) < 0 {
		return fmt.Errorf("block %s in section %s: %w", blockID, sectionID, domain.ErrNotFound)
	}
	return nil
}

// parseValue returns raw as a string, or decodes it as JSON when asJSON is set.
func parseValue(raw string, asJSON bool) (any, error) {
	if !asJSON {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: value is not valid JSON: %v", domain.ErrInvalidInput, err)
	}
	return v, nil
}

// parseFieldPairs parses key=value flags into fields. Keys may be dotted.
func parseFieldPairs(pairs []string) (domain.Fields, error) {
	fields := domain.Fields{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: field %q must be key=value", domain.ErrInvalidInput, pair)
		}
		if _, err := domain.SetPath(fields, key, value); err != nil {
			return nil, err
		}
	}
	return fields, nil
}
