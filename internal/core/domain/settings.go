package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for text generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend selects the durable medium behind the persistence gateway.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps state for the life of the process only.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite stores state in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageRedis stores state in a Redis server.
	StorageRedis StorageBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageMemory:
		return "Memory (not persisted)"
	case StorageSQLite:
		return "SQLite (local file)"
	case StorageRedis:
		return "Redis (server)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the durable medium.
	Backend StorageBackend

	// DataDir is the SQLite data directory (empty = ~/.vitae/data).
	DataDir string

	// RedisURL is the redis:// connection URL.
	RedisURL string
}

// EditorSettings holds document editor behaviour.
type EditorSettings struct {
	// DebounceMS is the persistence quiescence window in milliseconds.
	DebounceMS int

	// Template is the last selected template.
	Template Template
}

// Debounce returns the debounce window as a duration.
func (e EditorSettings) Debounce() time.Duration {
	return time.Duration(e.DebounceMS) * time.Millisecond
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// ExportSettings holds PDF export configuration.
type ExportSettings struct {
	// ChromePath is the browser executable (empty = auto-detect).
	ChromePath string

	// TimeoutSeconds bounds a single export.
	TimeoutSeconds int
}

// Timeout returns the export timeout as a duration.
func (e ExportSettings) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Storage holds persistence settings.
	Storage StorageSettings

	// Editor holds editor behaviour settings.
	Editor EditorSettings

	// Server holds HTTP server settings.
	Server ServerSettings

	// Export holds PDF export settings.
	Export ExportSettings
}

// DefaultDebounceMS is the default persistence quiescence window.
const DefaultDebounceMS = 500

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users set it up via 'vitae settings llm'.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Editor: EditorSettings{
			DebounceMS: DefaultDebounceMS,
			Template:   DefaultTemplate,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:7420",
		},
		Export: ExportSettings{
			TimeoutSeconds: 60,
		},
	}
}

// AllLLMProviders returns providers that support text generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllStorageBackends returns every storage backend.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageMemory, StorageSQLite, StorageRedis}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
