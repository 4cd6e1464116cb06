package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names. The Prometheus exporter turns dots into underscores and
// appends unit suffixes, e.g. mnemonify_requests_total.
const (
	metricRequests = "mnemonify.requests.total"
	metricDuration = "mnemonify.request.duration.seconds"
	metricErrors   = "mnemonify.errors.total"
	metricInflight = "mnemonify.inflight.requests"
	metricBytes    = "mnemonify.bytes.processed"
)

// Values of the status attribute.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	keyOp     = attribute.Key("op")
	keyStatus = attribute.Key("status")
)

// Codec calls are CPU-bound and scale with input length: 10µs to 1s.
var durationBuckets = []float64{1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2, 5e-2, 0.1, 0.5, 1}

// REDMetrics records rate, errors and duration per operation, plus the
// in-flight count and the input volume.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
	bytes    metric.Int64Counter
}

// NewREDMetrics creates the instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	var (
		rm   REDMetrics
		errs [5]error
	)

	rm.requests, errs[0] = mt.Int64Counter(metricRequests,
		metric.WithDescription("Operations started"), metric.WithUnit("{request}"))
	rm.duration, errs[1] = mt.Float64Histogram(metricDuration,
		metric.WithDescription("Operation latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	rm.errors, errs[2] = mt.Int64Counter(metricErrors,
		metric.WithDescription("Operations that failed"), metric.WithUnit("{error}"))
	rm.inflight, errs[3] = mt.Int64UpDownCounter(metricInflight,
		metric.WithDescription("Operations in progress"), metric.WithUnit("{request}"))
	rm.bytes, errs[4] = mt.Int64Counter(metricBytes,
		metric.WithDescription("Input bytes handed to the codec"), metric.WithUnit("By"))

	names := [...]string{metricRequests, metricDuration, metricErrors, metricInflight, metricBytes}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", names[i], err)
		}
	}

	return &rm, nil
}

// RecordRequest counts one finished operation and its latency. StatusError
// also bumps the error counter.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	opAttr := keyOp.String(op)
	attrs := metric.WithAttributes(opAttr, keyStatus.String(status))

	rm.requests.Add(ctx, 1, attrs)
	rm.duration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errors.Add(ctx, 1, metric.WithAttributes(opAttr))
	}
}

// RecordBytes adds n input bytes for op.
func (rm *REDMetrics) RecordBytes(ctx context.Context, op string, n int) {
	rm.bytes.Add(ctx, int64(n), metric.WithAttributes(keyOp.String(op)))
}

// TrackInflight marks op as running until the returned function is called.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(keyOp.String(op))
	rm.inflight.Add(ctx, 1, attrs)

	return func() { rm.inflight.Add(ctx, -1, attrs) }
}
