package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewHandler_TextByDefault(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(newHandler(&buf, "info"))
	logger.Info("hello", "workflow_id", "wf-1")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "workflow_id=wf-1")
}

func TestNewHandler_JSONFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer

	logger := slog.New(newHandler(&buf, "info"))
	logger.Info("hello", "workflow_id", "wf-1")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "wf-1", record["workflow_id"])
}

func TestNewHandler_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(newHandler(&buf, "error"))
	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetup_TagsService(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	Setup("debug")

	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	assert.NotNil(t, WithModule("worker"))
}
