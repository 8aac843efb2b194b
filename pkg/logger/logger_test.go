package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: slog.LevelInfo, Format: FormatJSON, App: "schedule-hub"})

	log.Debug("hidden")
	log.Info("loaded", RunID("run-1"), "lessons", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "loaded", rec["msg"])
	assert.Equal(t, "schedule-hub", rec["app"])
	assert.Equal(t, "run-1", rec[KeyRunID])
	assert.EqualValues(t, 3, rec["lessons"])
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: slog.LevelWarn})

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud", Component("lk"))
	assert.Contains(t, buf.String(), "msg=loud")
	assert.Contains(t, buf.String(), "component=lk")
}
