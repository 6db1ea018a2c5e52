package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

func rootDecision(s sdktrace.Sampler, id byte) sdktrace.SamplingDecision {
	var traceID trace.TraceID
	for i := range traceID {
		traceID[i] = id
	}
	return s.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       traceID,
		Name:          "GET /api/networth/summary",
	}).Decision
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		id    byte
		want  sdktrace.SamplingDecision
	}{
		{name: "everything", ratio: 1, id: 0xff, want: sdktrace.RecordAndSample},
		{name: "above one", ratio: 3, id: 0xff, want: sdktrace.RecordAndSample},
		{name: "nothing", ratio: 0, id: 0x00, want: sdktrace.Drop},
		{name: "half keeps low ids", ratio: 0.5, id: 0x00, want: sdktrace.RecordAndSample},
		{name: "half drops high ids", ratio: 0.5, id: 0xff, want: sdktrace.Drop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rootDecision(Sampler(tt.ratio), tt.id))
		})
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "networth-api", Environment: "staging"})
	require.NoError(t, err)

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "networth-api", name.AsString())

	env, ok := res.Set().Value(semconv.DeploymentEnvironmentKey)
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())
}

func TestMetricsServer(t *testing.T) {
	srv := metricsServer("9464")
	assert.Equal(t, ":9464", srv.Addr)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/networth/summary", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
