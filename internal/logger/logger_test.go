package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Options{Enabled: false, Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	Error("dropped")
	assert.Empty(t, buf.String())
}

func TestInit_TextLevel(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Level: slog.LevelWarn, Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	Info("below level")
	Warn("kept", "size", 10)

	out := buf.String()
	assert.NotContains(t, out, "below level")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "size=10")
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Level: slog.LevelDebug, JSON: true, Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	Debug("alloc", "ptr", 20)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "alloc", rec["msg"])
	assert.EqualValues(t, 20, rec["ptr"])
}

func TestInit_LogDir(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "heapctl-2000-01-01.log")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))
	require.NoError(t, os.WriteFile(other, nil, 0o644))

	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	Info("to file")
	require.NoError(t, closeFn())

	assert.NoFileExists(t, stale, "logs past retention should be removed")
	assert.FileExists(t, other)

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	_, _ = Init(Options{})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
