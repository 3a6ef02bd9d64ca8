package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vitae", "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("l", []string{"a", "b"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "hello"},
		{"int", store.GetInt("i"), 42},
		{"bool", store.GetBool("b"), true},
		{"slice", store.GetStringSlice("l"), []string{"a", "b"}},
		{"string wrong type", store.GetString("i"), ""},
		{"int wrong type", store.GetInt("s"), 0},
		{"bool missing", store.GetBool("missing"), false},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("editor.debounce_ms", 250))
	require.NoError(t, store.Set("storage.backend", "sqlite"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", reopened.GetString("llm.provider"))
	assert.Equal(t, 250, reopened.GetInt("editor.debounce_ms"))
	assert.Equal(t, "sqlite", reopened.GetString("storage.backend"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "llama3.2"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Regexp(t, `model = ['"]llama3\.2['"]`, string(data))
}

func TestConfigStore_SetEmptyStringRemovesKey(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.base_url", "http://x"))
	require.NoError(t, store.Set("llm.base_url", ""))

	_, ok := store.Get("llm.base_url")
	assert.False(t, ok)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
	require.NoError(t, store.Set("a", "b"), "store stays writable after empty load")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// Replace the file path with a directory so the write fails.
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Save())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("editor.debounce_ms", n+1)
			_ = store.GetInt("editor.debounce_ms")
		}(i)
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("editor.debounce_ms"))
}

func TestNestMap(t *testing.T) {
	tests := []struct {
		name string
		flat map[string]any
		want map[string]any
	}{
		{
			name: "single level",
			flat: map[string]any{"a": 1},
			want: map[string]any{"a": 1},
		},
		{
			name: "shared table",
			flat: map[string]any{"llm.model": "m", "llm.provider": "p"},
			want: map[string]any{"llm": map[string]any{"model": "m", "provider": "p"}},
		},
		{
			name: "deep",
			flat: map[string]any{"a.b.c": true},
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": true}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nestMap(tt.flat)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.flat, flattenMap(got, ""))
		})
	}
}
