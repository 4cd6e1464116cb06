package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationScope names both the tracer and the meter.
const instrumentationScope = "mnemonify"

// Providers holds the initialized observability providers.
type Providers struct {
	// Tracer is the named tracer for creating spans.
	Tracer trace.Tracer

	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Logger is the context-aware structured logger.
	Logger *slog.Logger

	// MetricsHandler serves the Prometheus scrape endpoint. It is nil
	// unless Config.MetricsEnabled is set.
	MetricsHandler http.Handler

	// Shutdown flushes all pending telemetry and releases resources.
	// Must be called before process exit.
	Shutdown func(ctx context.Context) error
}

// meterSetup is the metric half of Init.
type meterSetup struct {
	provider metric.MeterProvider
	handler  http.Handler
	shutdown func(ctx context.Context) error
}

// Init wires tracing, metrics and structured logging. Spans stay in the
// process so that log records can carry trace and span IDs; nothing is
// exported except the optional Prometheus registry.
func Init(cfg Config) (Providers, error) {
	res, err := newResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	tracing := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)

	meters, err := newMeterSetup(cfg.MetricsEnabled, res)
	if err != nil {
		return Providers{}, errors.Join(
			fmt.Errorf("set up metrics: %w", err),
			tracing.Shutdown(context.Background()),
		)
	}

	otel.SetTracerProvider(tracing)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	grace := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if grace <= 0 {
		grace = defaultShutdownTimeoutSec * time.Second
	}

	return Providers{
		Tracer:         tracing.Tracer(instrumentationScope),
		Meter:          meters.provider.Meter(instrumentationScope),
		Logger:         newLogger(cfg),
		MetricsHandler: meters.handler,
		Shutdown: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, grace)
			defer cancel()

			return errors.Join(tracing.Shutdown(ctx), meters.shutdown(ctx))
		},
	}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String("app.mode", string(cfg.Mode)))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("describe otel resource: %w", err)
	}

	return res, nil
}

// sampler samples every root span unless ratio is strictly between 0 and 1.
func sampler(ratio float64) sdktrace.Sampler {
	root := sdktrace.AlwaysSample()
	if ratio > 0 && ratio < 1 {
		root = sdktrace.TraceIDRatioBased(ratio)
	}

	return sdktrace.ParentBased(root)
}

func newMeterSetup(enabled bool, res *resource.Resource) (meterSetup, error) {
	if !enabled {
		return meterSetup{
			provider: noopmetric.NewMeterProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	// A private registry lets Init run more than once per process.
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return meterSetup{}, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return meterSetup{
		provider: mp,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		shutdown: mp.Shutdown,
	}, nil
}

func newLogger(cfg Config) *slog.Logger {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	inner := slog.Handler(slog.NewTextHandler(out, opts))
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(out, opts)
	}

	return slog.New(NewLogHandler(inner, cfg.ServiceName, cfg.Mode, cfg.LogEscape))
}
