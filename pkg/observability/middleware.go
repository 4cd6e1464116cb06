package observability

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrServerStatus marks an HTTP request answered with a 5xx status.
type ErrServerStatus int

func (e ErrServerStatus) Error() string {
	return http.StatusText(int(e))
}

// statusRecorder remembers the first status code written. Zero means the
// handler never called WriteHeader, which net/http answers with 200.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}

	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}

	return r.status
}

// InstrumentHandler wraps next so that each request runs as an operation
// named "METHOD /path": a server span continuing any W3C trace context found
// in the headers, plus a RED record that counts 5xx answers as errors.
func InstrumentHandler(in Instruments, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		parent := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, finish := in.Start(parent, req.Method+" "+req.URL.Path, max(int(req.ContentLength), 0),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				attribute.String("url.path", req.URL.Path),
			),
		)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, req.WithContext(ctx))

		code := rec.code()
		trace.SpanFromContext(ctx).SetAttributes(semconv.HTTPResponseStatusCode(code))

		var err error
		if code >= http.StatusInternalServerError {
			err = ErrServerStatus(code)
		}

		finish(err)
	})
}
