package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vitae/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/services"
)

func newTestApp(t *testing.T) (*App, *services.Editor) {
	t.Helper()
	ed := newTestEditor()
	app, err := NewApp(&Ports{Editor: ed, Export: &MockExportService{}})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	app.SetDimensions(120, 40)
	return app, ed
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run delivers msg and feeds every message its commands produce back
// into the app.
func run(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	for _, m := range drain(cmd) {
		if m != nil {
			run(app, m)
		}
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNewApp_Success(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.True(t, app.Ready())
	assert.NoError(t, app.Err())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingEditorService)
	assert.Nil(t, app)
}

func TestApp_Init(t *testing.T) {
	app, _ := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Editor: newTestEditor()})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_MenuToEditor(t *testing.T) {
	app, _ := newTestApp(t)

	run(app, key("enter"))

	assert.Equal(t, messages.ViewEditor, app.CurrentView())
	out := app.View()
	assert.Contains(t, out, "Sections (5)")
	assert.Contains(t, out, "classic")
	assert.Equal(t, status.StateEditor, app.StatusBar().State())
}

func TestApp_EditorToSectionAndBack(t *testing.T) {
	app, ed := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewEditor})

	run(app, key("j"))
	run(app, key("enter"))

	assert.Equal(t, messages.ViewSection, app.CurrentView())
	assert.Equal(t, ed.Snapshot().Sections[1].ID, app.sectionView.SectionID())
	assert.Contains(t, app.View(), "text:")

	run(app, key("esc"))
	assert.Equal(t, messages.ViewEditor, app.CurrentView())
}

func TestApp_LiveUpdatesReachViews(t *testing.T) {
	app, ed := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewEditor})

	ed.SetDocument(func(d domain.Document) domain.Document {
		d.Meta.Title = "Edited Elsewhere"
		return d
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	app.WithContext(ctx)
	msg := app.waitForChange()()
	changed, ok := msg.(messages.DocumentChanged)
	require.True(t, ok)

	_, cmd := app.Update(changed)

	assert.NotNil(t, cmd, "keeps listening")
	assert.Contains(t, app.View(), "Edited Elsewhere")
}

func TestApp_Publish_CoalescesPendingSnapshots(t *testing.T) {
	app, ed := newTestApp(t)

	for _, title := range []string{"one", "two", "three"} {
		ed.SetDocument(func(d domain.Document) domain.Document {
			d.Meta.Title = title
			return d
		})
	}

	require.Len(t, app.changes, 1)
	got := <-app.changes
	assert.Equal(t, "three", got.Document.Meta.Title)
}

func TestApp_Close_StopsUpdates(t *testing.T) {
	app, ed := newTestApp(t)

	app.Close()
	app.Close()
	ed.SetDocument(func(d domain.Document) domain.Document { return d })

	assert.Empty(t, app.changes)
}

func TestApp_WaitForChange_ContextDone(t *testing.T) {
	app, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, app.WithContext(ctx).waitForChange()())
}

func TestApp_Reorder(t *testing.T) {
	app, ed := newTestApp(t)
	first := ed.Snapshot().Sections[0].ID
	app.Update(messages.ViewChanged{View: messages.ViewEditor})

	run(app, key("J"))

	assert.Equal(t, first, ed.Snapshot().Sections[1].ID)
}

func TestApp_StatusUpdated(t *testing.T) {
	app, _ := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewEditor})

	app.Update(messages.StatusUpdated{Text: "Exporting PDF", Busy: true})
	assert.Equal(t, status.StateBusy, app.StatusBar().State())

	app.Update(messages.ExportCompleted{Path: "doc.pdf"})
	assert.Equal(t, status.StateEditor, app.StatusBar().State())
	assert.Equal(t, "Saved doc.pdf", app.StatusBar().Message())
}

func TestApp_Errors(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"plain", messages.ErrorOccurred{Err: errors.New("boom")}, "boom"},
		{"llm", messages.ErrorOccurred{Err: domain.ErrLLMUnavailable}, "open Settings"},
		{"export", messages.ExportCompleted{Err: domain.ErrRendererUnavailable}, "--chrome-path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.Update(messages.ViewChanged{View: messages.ViewEditor})

			app.Update(tt.msg)

			require.Error(t, app.Err())
			assert.Equal(t, status.StateError, app.StatusBar().State())
			assert.Contains(t, app.StatusBar().Message(), tt.want)
		})
	}
}

func TestApp_Help(t *testing.T) {
	app, _ := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewEditor})

	run(app, key("?"))

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	out := app.View()
	assert.Contains(t, out, "Outline")
	assert.Contains(t, out, "move up")

	run(app, key("esc"))
	assert.Equal(t, messages.ViewEditor, app.CurrentView())
}

func TestApp_QuitKeys(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	app.Update(messages.ViewChanged{View: messages.ViewEditor})
	_, cmd = app.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_EditingSuspendsGlobalKeys(t *testing.T) {
	app, ed := newTestApp(t)
	doc := ed.Snapshot()
	s, _ := doc.SectionByType(domain.SectionSummary)
	app.Update(messages.SectionSelected{SectionID: s.ID})
	app.Update(key("j"))
	app.Update(key("e"))
	require.True(t, app.sectionView.Editing())

	_, cmd := app.Update(key("q"))

	if cmd != nil {
		assert.NotEqual(t, tea.QuitMsg{}, cmd())
	}
	assert.Equal(t, messages.ViewSection, app.CurrentView())
}

func TestApp_Settings_NoService(t *testing.T) {
	app, _ := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewMenu})
	run(app, key("j"))

	run(app, key("enter"))

	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	assert.Contains(t, app.View(), "settings service not available")
}
