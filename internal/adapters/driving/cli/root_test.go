package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

func TestRootCmd_FlushesAfterCommand(t *testing.T) {
	editor := newTestEditor()
	header := sectionOf(t, editor, domain.SectionHeader)
	flusher := &fakeFlusher{}

	_, err := execute(t, Services{Editor: editor, Persistence: flusher}, "",
		"field", "set", header.ID, header.Blocks[0].ID, "name", "Jane")

	require.NoError(t, err)
	assert.Equal(t, 1, flusher.calls)
}

func TestRootCmd_FlushErrorFailsCommand(t *testing.T) {
	flusher := &fakeFlusher{err: errors.New("disk full")}

	_, err := execute(t, Services{Editor: newTestEditor(), Persistence: flusher}, "", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRootCmd_NoFlushWithoutPersistence(t *testing.T) {
	assert.NoError(t, flushPending(context.Background()))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	want := []string{
		"block", "document", "export", "field", "generate", "mcp", "reset",
		"section", "serve", "settings", "show", "template", "theme", "tui", "version",
	}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], "missing command %s", name)
	}
}

func TestSetServices(t *testing.T) {
	editor := newTestEditor()
	health := &fakeHealth{}
	SetServices(Services{Editor: editor, Assist: &fakeAssist{}, Health: health})
	t.Cleanup(func() { SetServices(Services{}) })

	assert.Equal(t, editor, editorService)
	assert.NotNil(t, assistService)
	assert.Nil(t, exportService)
	assert.Nil(t, persistence)
	assert.Same(t, health, storeHealth)
}
