package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/views/editor"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/views/section"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/vitae/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the key bindings shared by all views.
	keymap *keymap.KeyMap

	// menuView is the main navigation menu.
	menuView *menu.View

	// editorView is the outline with the live preview.
	editorView *editor.View

	// sectionView edits the blocks of one section.
	sectionView *section.View

	// settingsView is the settings configuration view component.
	settingsView *settings.View

	// statusBar is rendered under the editor views.
	statusBar *status.Bar

	// changes receives committed snapshots from the editor. Capacity one:
	// a pending snapshot is replaced by a newer one.
	changes     chan messages.DocumentChanged
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menu.NewView(s),
		editorView:   editor.NewView(s, km, ports.Editor, ports.Export),
		sectionView:  section.NewView(s, km, ports.Editor, ports.Assist),
		settingsView: settings.NewView(s, ports.Settings),
		statusBar:    status.NewBar(s, km),
		changes:      make(chan messages.DocumentChanged, 1),
		currentView:  messages.ViewMenu,
	}
	a.syncDocument(ports.Editor.Snapshot(), ports.Editor.Template())
	a.unsubscribe = ports.Editor.Subscribe(a.publish)
	return a, nil
}

// publish is the editor listener. It never blocks: a snapshot the UI has
// not consumed yet is replaced.
func (a *App) publish(doc domain.Document, tmpl domain.Template) {
	msg := messages.DocumentChanged{Document: doc, Template: tmpl}
	for {
		select {
		case a.changes <- msg:
			return
		default:
		}
		select {
		case <-a.changes:
		default:
		}
	}
}

// waitForChange delivers the next committed snapshot to Update.
func (a *App) waitForChange() tea.Cmd {
	ch := a.changes
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close stops receiving editor updates.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("vitae - Resume Editor"),
		a.waitForChange(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)

	case messages.DocumentChanged:
		a.syncDocument(msg.Document, msg.Template)
		return a, a.waitForChange()

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.SectionSelected:
		a.sectionView.Open(msg.SectionID)
		return a, a.switchView(messages.ViewSection)

	case messages.StatusUpdated:
		a.err = nil
		a.statusBar.SetMessage(msg.Text)
		if msg.Busy {
			a.statusBar.SetState(status.StateBusy)
		} else {
			a.statusBar.SetState(a.barState())
		}
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.ExportCompleted:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.statusBar.SetState(a.barState())
		a.statusBar.SetMessage("Saved " + msg.Path)
		return a, nil

	case messages.GenerateCompleted:
		a.statusBar.SetState(a.barState())
		a.statusBar.SetMessage("")
		a.sectionView, cmd = a.sectionView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	k := msg.String()

	// Keys typed into a field belong to the field.
	if a.currentView == messages.ViewSection && a.sectionView.Editing() {
		a.sectionView, cmd = a.sectionView.Update(msg)
		return cmd
	}

	if a.currentView == messages.ViewEditor || a.currentView == messages.ViewSection {
		switch {
		case keymap.Matches(k, a.keymap.Help):
			return a.switchView(messages.ViewHelp)
		case k == "q":
			return tea.Quit
		}
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewEditor:
		a.editorView, cmd = a.editorView.Update(msg)
	case messages.ViewSection:
		a.sectionView, cmd = a.sectionView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || k == "q" {
			return a.switchView(messages.ViewEditor)
		}
	}
	return cmd
}

func (a *App) switchView(v messages.ViewType) tea.Cmd {
	a.currentView = v
	a.err = nil
	a.statusBar.Clear()
	a.statusBar.SetState(a.barState())

	switch v {
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewEditor:
		a.editorView.SetDocument(a.ports.Editor.Snapshot(), a.ports.Editor.Template())
	case messages.ViewMenu, messages.ViewSection:
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	}
	return nil
}

func (a *App) barState() status.State {
	switch a.currentView {
	case messages.ViewEditor:
		return status.StateEditor
	case messages.ViewSection:
		return status.StateSection
	case messages.ViewHelp:
		return status.StateHelp
	default:
		return status.StateReady
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(describe(err))
}

// describe adds a hint for errors the user can fix from the settings.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "no LLM configured; open Settings to add one"
	case errors.Is(err, domain.ErrRendererUnavailable):
		return "PDF export needs Chrome; run 'vitae settings export --chrome-path'"
	default:
		return err.Error()
	}
}

func (a *App) syncDocument(doc domain.Document, tmpl domain.Template) {
	a.menuView.SetDocumentTitle(doc.Meta.Title)
	a.editorView.SetDocument(doc, tmpl)
	if a.sectionView.SectionID() != "" {
		a.sectionView.SetDocument(doc)
	}
	visible := 0
	for _, s := range doc.Sections {
		if !s.Hidden {
			visible++
		}
	}
	a.statusBar.SetDocument(tmpl.String(), visible)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewEditor:
		body = a.editorView.View()
	case messages.ViewSection:
		body = a.sectionView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		return a.menuView.View()
	}

	bodyHeight := a.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

// viewHelp renders the help view from the key bindings.
func (a *App) viewHelp() string {
	titles := []string{"Navigation", "Outline", "Section", "Preview"}
	out := a.styles.Title.Render("Help") + "\n"
	for i, group := range a.keymap.FullHelp() {
		out += "\n" + a.styles.Subtitle.Render(titles[i]) + "\n"
		for _, b := range group {
			h := b.Help()
			out += fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc)
		}
	}
	out += "\n" + a.styles.Help.Render("[esc] back to editor")
	return out
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusBar exposes the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.editorView.SetDimensions(width, height-1)
	a.sectionView.SetDimensions(width, height-1)
	a.settingsView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}
