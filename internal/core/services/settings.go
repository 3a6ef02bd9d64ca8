package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyStorageBackend = "storage.backend"
	keyStorageDataDir = "storage.data_dir"
	keyStorageRedis   = "storage.redis_url"
	keyDebounceMS     = "editor.debounce_ms"
	keyServerAddr     = "server.addr"
	keyChromePath     = "export.chrome_path"
	keyExportTimeout  = "export.timeout_seconds"
)

// Environment variables that override stored secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvLLMAPIKey = "VITAE_LLM_API_KEY"
	EnvRedisURL  = "VITAE_REDIS_URL"
)

// defaultOllamaURL is used when a local provider has no base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Secrets set in the
// environment win over stored values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend:  s.getBackend(defaults.Storage.Backend),
			DataDir:  s.configStore.GetString(keyStorageDataDir),
			RedisURL: s.configStore.GetString(keyStorageRedis),
		},
		Editor: domain.EditorSettings{
			DebounceMS: s.getInt(keyDebounceMS, defaults.Editor.DebounceMS),
			Template:   s.getTemplate(defaults.Editor.Template),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Export: domain.ExportSettings{
			ChromePath:     s.configStore.GetString(keyChromePath),
			TimeoutSeconds: s.getInt(keyExportTimeout, defaults.Export.TimeoutSeconds),
		},
	}

	if key := s.getenv(EnvLLMAPIKey); key != "" {
		settings.LLM.APIKey = key
	}
	if url := s.getenv(EnvRedisURL); url != "" {
		settings.Storage.RedisURL = url
	}

	return settings, nil
}

// Save persists application settings. The template selector is owned by
// the editor and is not written here.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStorageRedis, s.unlessEnv(keyStorageRedis, EnvRedisURL, settings.Storage.RedisURL)},
		{keyDebounceMS, settings.Editor.DebounceMS},
		{keyServerAddr, settings.Server.Addr},
		{keyChromePath, settings.Export.ChromePath},
		{keyExportTimeout, settings.Export.TimeoutSeconds},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// A key taken from the environment stays out of the config file.
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.getenv(EnvLLMAPIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// unlessEnv returns the stored value for key when value came from env.
func (s *SettingsService) unlessEnv(key, env, value string) string {
	if value != "" && value == s.getenv(env) {
		return s.configStore.GetString(key)
	}
	return value
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers accept an optional
	// gateway URL.
	switch {
	case baseURL != "":
		settings.LLM.BaseURL = baseURL
	case provider.IsLocal():
		settings.LLM.BaseURL = defaultOllamaURL
	default:
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetStorage configures the persistence backend.
func (s *SettingsService) SetStorage(backend domain.StorageBackend, dataDir, redisURL string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", backend)
	}
	if backend == domain.StorageRedis && redisURL == "" && s.getenv(EnvRedisURL) == "" {
		return fmt.Errorf("redis URL required for %s backend", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Storage.Backend = backend
	settings.Storage.DataDir = dataDir
	if redisURL != "" {
		settings.Storage.RedisURL = redisURL
	}

	return s.Save(settings)
}

// SetDebounce sets the persistence quiescence window.
func (s *SettingsService) SetDebounce(ms int) error {
	if ms <= 0 {
		return fmt.Errorf("debounce must be positive, got %d", ms)
	}
	if err := s.configStore.Set(keyDebounceMS, ms); err != nil {
		return fmt.Errorf("save %s: %w", keyDebounceMS, err)
	}
	return nil
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is missing an API key", settings.LLM.Provider)
	}
	if settings.Storage.Backend == domain.StorageRedis && settings.Storage.RedisURL == "" {
		return fmt.Errorf("storage backend %q requires a redis URL", settings.Storage.Backend)
	}
	if settings.Editor.DebounceMS <= 0 {
		return fmt.Errorf("debounce must be positive, got %d", settings.Editor.DebounceMS)
	}
	if settings.Export.TimeoutSeconds <= 0 {
		return fmt.Errorf("export timeout must be positive, got %d", settings.Export.TimeoutSeconds)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getTemplate(defaultVal domain.Template) domain.Template {
	t := domain.Template(s.configStore.GetString(keyTemplate))
	if !t.IsValid() {
		return defaultVal
	}
	return t
}
