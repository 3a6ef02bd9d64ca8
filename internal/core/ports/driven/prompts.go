package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSectionWriter is the system prompt for AI assist.
	// It is a text/template rendered with the normalised GenerateRequest.
	PromptSectionWriter = "section_writer"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultSectionWriterPrompt is the built-in PromptSectionWriter template.
// Fields: .Section, .Role, .Organization, .Location, .Start, .End, .Skills,
// .Lang, .StyleDescription and .Bullets.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultSectionWriterPrompt = `You write resume content. Write in language "{{.Lang}}".
Describe one {{.Section}} entry{{if .Role}} for the role "{{.Role}}"{{end}}{{if .Organization}} at "{{.Organization}}"{{end}}{{if .Location}} in {{.Location}}{{end}}{{if or .Start .End}} ({{.Start}} - {{.End}}){{end}}.
{{if .Skills}}Mention these skills where they fit naturally: {{join .Skills ", "}}.
{{end}}Tone: {{.StyleDescription}}.
Never invent employers, dates, degrees or numbers that were not given.

Reply with a single JSON object and nothing else:
{"paragraph": "<two or three sentences>"{{if .Bullets}}, "bullets": ["<achievement>", "<achievement>", "<achievement>"]{{end}}}`
