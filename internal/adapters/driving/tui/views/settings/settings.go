// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionLLM
	SectionStorage
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// overviewItems is the number of editable rows on the overview.
const overviewItems = 2

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	// Current settings
	settings *domain.AppSettings
	err      error

	// Navigation state
	section      Section
	selected     int // selection within current section
	focusedField int // 1 when the API key input has focus

	llmAPIKeyInput textinput.Model

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	llmAPIKeyInput := textinput.New()
	llmAPIKeyInput.Placeholder = "Enter API key"
	llmAPIKeyInput.EchoMode = textinput.EchoPassword
	llmAPIKeyInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		llmAPIKeyInput:  llmAPIKeyInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.section = SectionOverview
		v.selected = 0
		v.focusedField = 0
		v.llmAPIKeyInput.Blur()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionLLM:
		return v.handleLLMKeys(msg)
	case SectionStorage:
		return v.handleStorageKeys(msg)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < overviewItems-1 {
			v.selected++
		}
	case keyEnter:
		switch v.selected {
		case 0:
			v.section = SectionLLM
			v.selected = v.getLLMProviderIndex()
		case 1:
			v.section = SectionStorage
			v.selected = v.getStorageBackendIndex()
		}
	}
	return v, nil
}

//nolint:gocognit // TUI input complexity
func (v *View) handleLLMKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllLLMProviders()

	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.llmAPIKeyInput.Blur()
			return v, nil
		case keyEnter:
			if v.selected >= 0 && v.selected < len(providers) {
				return v, v.setLLMProvider(providers[v.selected], v.llmAPIKeyInput.Value())
			}
		default:
			var cmd tea.Cmd
			v.llmAPIKeyInput, cmd = v.llmAPIKeyInput.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab:
		if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
			v.focusedField = 1
			return v, v.llmAPIKeyInput.Focus()
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(providers) {
			provider := providers[v.selected]
			if provider.RequiresAPIKey() {
				v.focusedField = 1
				return v, v.llmAPIKeyInput.Focus()
			}
			return v, v.setLLMProvider(provider, "")
		}
	}
	return v, nil
}

func (v *View) handleStorageKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	backends := domain.AllStorageBackends()

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(backends)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(backends) {
			return v, v.setStorage(backends[v.selected])
		}
	}
	return v, nil
}

// Commands to update settings.

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		model := domain.DefaultLLMModels()[provider]
		var baseURL string
		if v.settings != nil && v.settings.LLM.Provider == provider {
			baseURL = v.settings.LLM.BaseURL
		}
		err := v.settingsService.SetLLMProvider(provider, model, baseURL, apiKey)
		if err == nil {
			v.section = SectionOverview
			v.selected = 0
			v.focusedField = 0
			v.llmAPIKeyInput.SetValue("")
			v.llmAPIKeyInput.Blur()
		}
		return messages.SettingsSaved{Err: err}
	}
}

func (v *View) setStorage(backend domain.StorageBackend) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		var dataDir, redisURL string
		if v.settings != nil {
			dataDir = v.settings.Storage.DataDir
			redisURL = v.settings.Storage.RedisURL
		}
		err := v.settingsService.SetStorage(backend, dataDir, redisURL)
		if err == nil {
			v.section = SectionOverview
			v.selected = 1
		}
		return messages.SettingsSaved{Err: err}
	}
}

// Helper methods to get current selection indices.

func (v *View) getLLMProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllLLMProviders() {
		if p == v.settings.LLM.Provider {
			return i
		}
	}
	return 0
}

func (v *View) getStorageBackendIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, b := range domain.AllStorageBackends() {
		if b == v.settings.Storage.Backend {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionLLM:
		b.WriteString(v.renderLLMSelect())
	case SectionStorage:
		b.WriteString(v.renderStorageSelect())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	llmValue := "Not Set"
	if v.settings.LLM.Provider != "" {
		llmValue = fmt.Sprintf("%s (%s)", v.settings.LLM.Provider.Description(), v.settings.LLM.Model)
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{label: "LLM Provider", value: llmValue, status: v.getLLMStatus()},
		{label: "Storage", value: v.settings.Storage.Backend.Description()},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%s: %s", indicator, item.label, item.value)
		if item.status != "" {
			line += " " + item.status
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Autosave delay: %dms", v.settings.Editor.DebounceMS)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Server address: %s", v.settings.Server.Addr)))
	b.WriteString("\n")

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func (v *View) getLLMStatus() string {
	if v.settings.LLM.Provider == "" {
		return ""
	}
	if v.settings.LLM.IsConfigured() {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderLLMSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select LLM Provider"))
	b.WriteString("\n\n")

	providers := domain.AllLLMProviders()
	defaults := domain.DefaultLLMModels()
	for i, provider := range providers {
		focused := i == v.selected && v.focusedField == 0
		indicator := "  "
		if focused {
			indicator = "> "
		}

		current := ""
		if provider == v.settings.LLM.Provider {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, provider.Description(), current)
		if focused {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")

		if model, ok := defaults[provider]; ok {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", model)))
			b.WriteString("\n")
		}
	}

	if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.llmAPIKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderStorageSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Storage Backend"))
	b.WriteString("\n\n")

	for i, backend := range domain.AllStorageBackends() {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		current := ""
		if backend == v.settings.Storage.Backend {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, backend.Description(), current)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Takes effect on next start."))
	b.WriteString("\n")

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionStorage:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.err = nil
	v.llmAPIKeyInput.SetValue("")
	v.llmAPIKeyInput.Blur()
}
