package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, storage backend, autosave window
and PDF export.

Settings are stored in ~/.vitae/config.toml. VITAE_LLM_API_KEY and
VITAE_REDIS_URL override the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively configure the LLM provider used by 'vitae generate'.`,
	RunE:  runSettingsLLM,
}

var settingsStorageCmd = &cobra.Command{
	Use:   "storage [backend]",
	Short: "Set the storage backend",
	Long: `Set where the document is persisted.

Available backends:
  memory - Not persisted (lost on exit)
  sqlite - Local SQLite database (default)
  redis  - Redis server (requires --redis-url or VITAE_REDIS_URL)

Takes effect the next time vitae starts.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsStorage,
}

var settingsDebounceCmd = &cobra.Command{
	Use:   "debounce [milliseconds]",
	Short: "Set the autosave quiescence window",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDebounce,
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Configure PDF export",
	Args:  cobra.NoArgs,
	RunE:  runSettingsExport,
}

var (
	storageDataDir  string
	storageRedisURL string
	chromePath      string
	exportTimeout   int
)

func init() {
	settingsStorageCmd.Flags().StringVar(&storageDataDir, "data-dir", "", "SQLite data directory")
	settingsStorageCmd.Flags().StringVar(&storageRedisURL, "redis-url", "", "Redis URL (redis://host:port/db)")
	settingsExportCmd.Flags().StringVar(&chromePath, "chrome-path", "", "Chrome or Chromium executable")
	settingsExportCmd.Flags().IntVar(&exportTimeout, "timeout", 0, "Export timeout in seconds")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsStorageCmd)
	settingsCmd.AddCommand(settingsDebounceCmd)
	settingsCmd.AddCommand(settingsExportCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		dir := settings.Storage.DataDir
		if dir == "" {
			dir = "~/.vitae/data"
		}
		cmd.Printf("  Data dir: %s\n", dir)
	case domain.StorageRedis:
		cmd.Printf("  URL: %s\n", settings.Storage.RedisURL)
	}
	cmd.Println()

	cmd.Println("[Editor]")
	cmd.Printf("  Autosave after: %dms\n", settings.Editor.DebounceMS)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Println("[Export]")
	chrome := settings.Export.ChromePath
	if chrome == "" {
		chrome = "(auto-detect)"
	}
	cmd.Printf("  Chrome: %s\n", chrome)
	cmd.Printf("  Timeout: %ds\n", settings.Export.TimeoutSeconds)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vitae settings llm' or 'vitae settings storage' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if selectedProvider.IsLocal() {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
	} else {
		cmd.Print("Enter base URL (blank for the provider's API): ")
	}
	baseURL := readLine(reader)

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsStorage(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.StorageBackend(strings.ToLower(args[0]))
	if !backend.IsValid() {
		return fmt.Errorf("invalid backend: %s (valid: memory, sqlite, redis)", args[0])
	}

	if err := settingsService.SetStorage(backend, storageDataDir, storageRedisURL); err != nil {
		return fmt.Errorf("failed to set storage: %w", err)
	}

	cmd.Printf("Storage backend set to: %s\n", backend.Description())
	return nil
}

func runSettingsDebounce(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	ms, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid debounce %q: must be a number of milliseconds", args[0])
	}
	if err := settingsService.SetDebounce(ms); err != nil {
		return fmt.Errorf("failed to set debounce: %w", err)
	}

	cmd.Printf("Autosave window set to %dms\n", ms)
	return nil
}

func runSettingsExport(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	flags := cmd.Flags()
	if !flags.Changed("chrome-path") && !flags.Changed("timeout") {
		return errors.New("nothing to change; pass --chrome-path or --timeout")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if flags.Changed("chrome-path") {
		settings.Export.ChromePath = chromePath
	}
	if flags.Changed("timeout") {
		if exportTimeout <= 0 {
			return errors.New("timeout must be positive")
		}
		settings.Export.TimeoutSeconds = exportTimeout
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Export settings saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise it
// reads a line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// confirm reads a yes/no answer from the command's input.
func confirm(cmd *cobra.Command) bool {
	answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
	return answer == "y" || answer == "yes"
}
