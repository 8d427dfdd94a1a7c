package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asynkron/tpo/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.Debug("hidden")
	l.Info("catalog loaded", "language", "fr", "entries", 12)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "catalog loaded", rec["msg"])
	assert.Equal(t, "fr", rec["language"])
	assert.EqualValues(t, 12, rec["entries"])
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "debug", Format: "pretty", NoColor: true}, &buf)
	require.NoError(t, err)

	l.Debug("scanning", "language", "de")
	l.With("file", "de.po").WithGroup("stats").Warn("duplicates found", "groups", 2)

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "scanning")
	assert.Contains(t, out, "language=de")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "file=de.po")
	assert.Contains(t, out, "stats.groups=2")
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	l.Info("quiet")
	assert.Empty(t, buf.String())

	l.Error("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpo.log")
	l, err := New(config.LogConfig{Format: "text", FilePath: path}, &bytes.Buffer{})
	require.NoError(t, err)

	l.Info("written to disk")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to disk")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, RunID(ctx))

	l := Discard()
	ctx = WithLogger(ctx, l)
	assert.Same(t, l, FromContext(ctx))

	ctx, id := WithRunID(ctx)
	assert.Equal(t, id, RunID(ctx))
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Same(t, l, FromContext(ctx))
}
