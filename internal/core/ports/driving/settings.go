package driving

import "github.com/custodia-labs/vitae/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetStorage configures the persistence backend.
	SetStorage(backend domain.StorageBackend, dataDir, redisURL string) error

	// SetDebounce sets the persistence quiescence window in milliseconds.
	SetDebounce(ms int) error

	// Validate checks that the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
