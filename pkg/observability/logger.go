package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Attribute keys added by LogHandler.
const (
	LogKeyTraceID = "trace_id"
	LogKeySpanID  = "span_id"
	LogKeyService = "service"
	LogKeyMode    = "mode"
)

// LogHandler is an [slog.Handler] that stamps every record with the service
// name, the app mode and, inside a span, the trace and span IDs.
//
// With an escape function set, the message and every string value pass
// through it before reaching the wrapped handler. Mnemonify uses this to keep
// log files ASCII-only by escaping them with its own encoder.
type LogHandler struct {
	inner  slog.Handler
	escape func(string) string
}

// NewLogHandler wraps inner. escape may be nil.
func NewLogHandler(inner slog.Handler, service string, appMode AppMode, escape func(string) string) *LogHandler {
	h := &LogHandler{inner: inner, escape: escape}
	h.inner = inner.WithAttrs(h.escapeAttrs([]slog.Attr{
		slog.String(LogKeyService, service),
		slog.String(LogKeyMode, string(appMode)),
	}))

	return h
}

// Enabled delegates to the wrapped handler.
func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds the span context, escapes the record if configured, and
// passes it on.
func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.escape != nil {
		escaped := slog.NewRecord(record.Time, record.Level, h.escape(record.Message), record.PC)

		record.Attrs(func(a slog.Attr) bool {
			escaped.AddAttrs(h.escapeAttr(a))

			return true
		})

		record = escaped
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(LogKeyTraceID, sc.TraceID().String()),
			slog.String(LogKeySpanID, sc.SpanID().String()),
		)
	}

	if err := h.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("log handler: %w", err)
	}

	return nil
}

// WithAttrs returns a handler whose wrapped handler carries attrs.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{inner: h.inner.WithAttrs(h.escapeAttrs(attrs)), escape: h.escape}
}

// WithGroup returns a handler whose wrapped handler opens the group name.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{inner: h.inner.WithGroup(name), escape: h.escape}
}

func (h *LogHandler) escapeAttrs(attrs []slog.Attr) []slog.Attr {
	if h.escape == nil {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = h.escapeAttr(a)
	}

	return out
}

func (h *LogHandler) escapeAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.escape(v.String()))
	case slog.KindGroup:
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(h.escapeAttrs(v.Group())...)}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, h.escape(err.Error()))
		}
	}

	return slog.Attr{Key: a.Key, Value: v}
}
