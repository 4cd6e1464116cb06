package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Instruments bundles what a single codec operation reports to. Either
// field may be nil; the matching signal is then dropped.
type Instruments struct {
	Tracer trace.Tracer
	RED    *REDMetrics
}

// Start opens a span named op, bumps the in-flight gauge, and counts the
// input bytes. The returned function ends the operation; a non-nil error
// marks both the span and the RED record as failed.
func (in Instruments) Start(
	ctx context.Context, op string, inputBytes int, opts ...trace.SpanStartOption,
) (context.Context, func(err error)) {
	start := time.Now()

	tracer := in.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	opts = append(opts, trace.WithAttributes(attribute.Int("input.bytes", inputBytes)))
	ctx, span := tracer.Start(ctx, op, opts...)

	done := func() {}

	if in.RED != nil {
		done = in.RED.TrackInflight(ctx, op)
		in.RED.RecordBytes(ctx, op, inputBytes)
	}

	return ctx, func(err error) {
		done()

		status := StatusOK

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			status = StatusError
		}

		if in.RED != nil {
			in.RED.RecordRequest(ctx, op, status, time.Since(start))
		}

		span.End()
	}
}

// NewInstruments builds Instruments from initialized providers.
func NewInstruments(p Providers) (Instruments, error) {
	red, err := NewREDMetrics(p.Meter)
	if err != nil {
		return Instruments{}, err
	}

	return Instruments{Tracer: p.Tracer, RED: red}, nil
}
