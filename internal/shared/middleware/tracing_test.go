package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRouteTemplate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/networth/summary", "/api/networth/summary"},
		{"/api/holdings/3f2b8c1e-9d4a-4e6b-8f1a-2c3d4e5f6a7b", "/api/holdings/{id}"},
		{"/api/wallets/0xAbC123", "/api/wallets/{id}"},
		{"/api/snapshots", "/api/snapshots"},
		{"/api/holdings/manual", "/api/holdings/manual"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteTemplate(tt.path))
		})
	}
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	tests := []struct {
		name     string
		path     string
		status   int
		wantSpan string
	}{
		{name: "api route", path: "/api/exposure/summary", status: http.StatusOK, wantSpan: "GET /api/exposure/summary"},
		{name: "api error", path: "/api/holdings/3f2b8c1e-9d4a-4e6b-8f1a-2c3d4e5f6a7b", status: http.StatusNotFound, wantSpan: "GET /api/holdings/{id}"},
		{name: "health skipped", path: "/health", status: http.StatusOK},
		{name: "metrics skipped", path: "/metrics", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(recorder.Ended())
			handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)

			spans := recorder.Ended()[before:]
			if tt.wantSpan == "" {
				assert.Empty(t, spans)
				return
			}
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantSpan, spans[0].Name())
		})
	}
}
