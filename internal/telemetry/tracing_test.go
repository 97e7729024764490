package telemetry

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_NoEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(t.Context(), "", "coinsim", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Error("global provider replaced without an endpoint")
	}
}

func TestSetup_ExportsSpans(t *testing.T) {
	var posts atomic.Int64
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/traces" {
			posts.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	shutdown, err := Setup(t.Context(), collector.URL+"/v1/traces", "coinsim", "test")
	if err != nil {
		t.Fatal(err)
	}
	_, span := otel.Tracer("telemetry-test").Start(t.Context(), "coinsim.session.flip")
	span.End()

	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if posts.Load() == 0 {
		t.Error("collector received no trace export")
	}
}
