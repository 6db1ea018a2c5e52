package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpTracer             = otel.Tracer("networth/http")
	httpMeter              = otel.Meter("networth/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("networth.http.request.duration",
		metric.WithDescription("API request duration in seconds, by route template"),
		metric.WithUnit("s"),
	)
	httpRequestErrors, _ = httpMeter.Int64Counter("networth.http.request.errors",
		metric.WithDescription("API requests answered with a 4xx or 5xx status"),
	)
)

// Health checks and scrapes stay out of traces and route metrics.
var untracedPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

var (
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	addressSegment = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
)

// RouteTemplate replaces holding, connection and wallet identifiers in path
// with {id} so spans and metrics are keyed per route, not per resource.
func RouteTemplate(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if uuidSegment.MatchString(p) || addressSegment.MatchString(p) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func traced(r *http.Request) bool {
	_, skip := untracedPaths[r.URL.Path]
	return !skip
}

// Tracing starts a server span per API request and records duration and
// error metrics keyed by route template.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !traced(r) {
			next.ServeHTTP(w, r)
			return
		}

		route := RouteTemplate(r.URL.Path)
		ctx, span := httpTracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}

		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		httpRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		if status >= 400 {
			httpRequestErrors.Add(ctx, 1, attrs)
		}
	})
}
