package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetJSON(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg", strings.TrimSpace(buf.String()))
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("Hidden")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	assert.Equal(t, "\n=== Test Section ===\n", buf.String())
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("info message %d", 42)

	assert.Equal(t, "[INFO] info message 42", strings.TrimSpace(buf.String()))
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("warning message")

	assert.Equal(t, "[WARN] warning message", strings.TrimSpace(buf.String()))
}

func TestError_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Error("write failed: %v", "disk full")

	assert.Equal(t, "[ERROR] write failed: disk full", strings.TrimSpace(buf.String()))
}

func TestSetJSON(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetJSON(true)

	Warn("structured %s", "line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "structured line", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestLogger_WithFields(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetJSON(true)

	l := Logger()
	l.Warn().Str("op", "update_field").Msg("miss")

	assert.Contains(t, buf.String(), `"op":"update_field"`)
}
