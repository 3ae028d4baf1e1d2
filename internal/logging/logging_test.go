package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Init swaps the process wide default logger, so these tests run serially.

func TestNewHasComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(slog.LevelDebug, FormatText, &buf))

	New("engine").Info("hello")

	require.Contains(t, buf.String(), "component=engine")
	require.Contains(t, buf.String(), "hello")
}

func TestInitFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(slog.LevelInfo, FormatText, &buf))
	New("fmt").Info("text check")
	require.Contains(t, buf.String(), "level=INFO")

	buf.Reset()
	require.NoError(t, Init(slog.LevelInfo, FormatJSON, &buf))
	New("session").Info("json check")
	require.Contains(t, buf.String(), `"level":"INFO"`)
	require.Contains(t, buf.String(), `"component":"session"`)
}

func TestInitLevelGating(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(slog.LevelWarn, FormatText, &buf))

	logger := New("gate")
	logger.Info("should be suppressed")
	logger.Warn("should appear")

	require.NotContains(t, buf.String(), "should be suppressed")
	require.Contains(t, buf.String(), "should appear")
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(slog.LevelInfo, FormatText, &buf))
	require.ErrorContains(t, Init(slog.LevelInfo, "xml", &buf), "invalid log format")

	New("keep").Info("still text")
	require.Contains(t, buf.String(), "component=keep")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestDiscard(t *testing.T) {
	require.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
