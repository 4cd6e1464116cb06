package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/observability"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	return record
}

func TestLogHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, "test-svc", observability.ModeCLI, nil))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "test message")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "test-svc", record["service"])
	assert.Equal(t, "cli", record["mode"])
}

func TestLogHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, "mnemonify", observability.ModeMCP, nil))

	logger.InfoContext(context.Background(), "no span")

	record := decodeRecord(t, &buf)

	_, hasTraceID := record["trace_id"]
	assert.False(t, hasTraceID)
	assert.Equal(t, "mnemonify", record["service"])
	assert.Equal(t, "mcp", record["mode"])
}

func TestLogHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, "mnemonify", observability.ModeCLI, nil))

	logger.WithGroup("table").InfoContext(context.Background(), "loaded", slog.Int("entries", 2082))

	record := decodeRecord(t, &buf)
	assert.Equal(t, "mnemonify", record["service"])

	table, ok := record["table"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2082, table["entries"], 0)
}

func TestLogHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, "mnemonify", observability.ModeCLI, nil))

	logger.With(slog.String("op", "encode")).InfoContext(context.Background(), "started")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "encode", record["op"])
	assert.Equal(t, "mnemonify", record["service"])
}

func TestLogHandler_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(observability.NewLogHandler(inner, "mnemonify", observability.ModeCLI, nil))

	logger.InfoContext(context.Background(), "dropped")
	assert.Zero(t, buf.Len())
}

func TestLogHandler_EscapesToASCII(t *testing.T) {
	t.Parallel()

	cdc, err := codec.New()
	require.NoError(t, err)

	var buf bytes.Buffer

	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, "mnemonify", observability.ModeCLI, cdc.Encode)).
		With(slog.String("file", "Gr\u00FC\u00DFe.txt"))

	logger.WithGroup("in").InfoContext(context.Background(), "F\u00FCr",
		slog.String("text", "\u20AC [x]"),
		slog.Any("error", errors.New("bad \u00E8")),
		slog.Int("n", 3))

	line := buf.String()
	for i := range len(line) {
		require.Less(t, line[i], byte(0x80), "non-ASCII log output: %q", line)
	}

	assert.Contains(t, line, "msg=F[u:]r")
	assert.Contains(t, line, "file=Gr[u:][ss]e.txt")
	assert.Contains(t, line, `in.text="[#20AC] [[]x[]]"`)
	assert.Contains(t, line, `in.error="bad [e!]"`)
	assert.Contains(t, line, "in.n=3")
}
