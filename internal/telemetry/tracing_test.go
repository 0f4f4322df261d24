package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Togather-Foundation/calendar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantErr string
	}{
		{
			name:    "sample rate too high",
			cfg:     config.TracingConfig{Enabled: true, Exporter: "none", ServiceName: "calendar", SampleRate: 2},
			wantErr: "invalid sample rate",
		},
		{
			name:    "unknown exporter",
			cfg:     config.TracingConfig{Enabled: true, Exporter: "jaeger", ServiceName: "calendar", SampleRate: 1},
			wantErr: "unsupported exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitTracing(context.Background(), tt.cfg, "test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitTracing_StdoutWritesToStderr(t *testing.T) {
	var buf bytes.Buffer
	orig := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = orig })

	cfg := config.TracingConfig{Enabled: true, Exporter: "stdout", ServiceName: "calendar-test", SampleRate: 1}
	shutdown, err := InitTracing(context.Background(), cfg, "v0.0.1")
	require.NoError(t, err)

	_, span := otel.Tracer("calendar-test").Start(context.Background(), "sample-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "sample-span")
}

func TestTransport_RecordsSpanPerRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	names := map[string]string{"/a": "get_event", "/b": ""}
	wrap := Transport(tp, func(r *http.Request) string { return names[r.URL.Path] })
	client := &http.Client{Transport: wrap(http.DefaultTransport)}

	for _, path := range []string{"/a", "/b"} {
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "calendar.get_event", spans[0].Name())
	assert.Equal(t, "HTTP GET", spans[1].Name())
}
