package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The logger is process global, so these tests do not run in parallel.

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "warn", Format: "json", Output: &buf}))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })

	ctx := context.Background()
	Info(ctx, "hidden")
	Warn(ctx, "unmatched instrument", "symbol", "ZB 03-24")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "unmatched instrument", rec["msg"])
	assert.Equal(t, "ZB 03-24", rec["symbol"])
	assert.NotContains(t, rec, "trace_id")
}

func TestOperationWithTracing(t *testing.T) {
	var logs, spans bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{
		Level:          "debug",
		Format:         "text",
		TracingEnabled: true,
		Output:         &logs,
		TraceOutput:    &spans,
	}))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })
	require.True(t, IsTracingEnabled())

	op := StartOperation(context.Background(), "import", "source", "upload.csv")
	Event(op.Context(), "diagnostic", "kind", "stray_exit_ignored", "line", 4)
	Info(op.Context(), "inside")
	op.End("trades", 3)

	assert.Contains(t, logs.String(), "trace_id=")
	assert.Contains(t, logs.String(), "Operation completed")
	assert.Contains(t, spans.String(), `"Name": "import"`)
	assert.Contains(t, spans.String(), "stray_exit_ignored")
}

func TestEndWithErrorLogs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "info", Output: &buf}))

	op := StartOperation(context.Background(), "import")
	op.EndWithError(errors.New("disk full"))

	assert.Contains(t, buf.String(), "Operation failed")
	assert.Contains(t, buf.String(), "disk full")
	assert.False(t, IsTracingEnabled())
}
