package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vitae/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(_ *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vitae", "prompts"), store.Dir())
	assert.NoDirExists(t, store.Dir(), "constructor performs no I/O")
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSectionWriter)

	require.NoError(t, err)
	assert.Equal(t, driven.DefaultSectionWriterPrompt, prompt)
	assert.FileExists(t, filepath.Join(dir, "section_writer.tmpl"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "section_writer.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("  Custom {{.Role}}\n\n"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSectionWriter)

	require.NoError(t, err)
	assert.Equal(t, "Custom {{.Role}}", prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, path string)
	}{
		{"file deleted", func(t *testing.T, path string) { require.NoError(t, os.Remove(path)) }},
		{"file emptied", func(t *testing.T, path string) { require.NoError(t, os.WriteFile(path, []byte(" \n"), 0600)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewPromptStore(dir)
			require.NoError(t, err)
			_, err = store.Load(driven.PromptSectionWriter)
			require.NoError(t, err)

			tt.prepare(t, filepath.Join(dir, "section_writer.tmpl"))
			store.Reload()

			prompt, err := store.Load(driven.PromptSectionWriter)
			require.NoError(t, err)
			assert.Equal(t, driven.DefaultSectionWriterPrompt, prompt)
		})
	}
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")

	assert.Error(t, err)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSectionWriter)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultSectionWriterPrompt, prompt)

	_, err = store.Load("nonexistent")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_CachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "section_writer.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, _ := store.Load(driven.PromptSectionWriter)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))
	cached, _ := store.Load(driven.PromptSectionWriter)
	store.Reload()
	fresh, _ := store.Load(driven.PromptSectionWriter)

	assert.Equal(t, "v1", first)
	assert.Equal(t, "v1", cached)
	assert.Equal(t, "v2", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("mine"), 0600))
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSectionWriter)
	require.NoError(t, err)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptSectionWriter)
			assert.NoError(t, err)
			assert.NotEmpty(t, prompt)
			store.Reload()
		}()
	}
	wg.Wait()
}
