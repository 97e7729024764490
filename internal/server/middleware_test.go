package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
)

func TestServer_metricsMiddleware(t *testing.T) {
	t.Run("Next handler is called", func(t *testing.T) {
		s := &Server{metrics: metrics.NewMetrics()}

		nextCalled := false
		next := func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
			w.WriteHeader(http.StatusOK)
		}

		handler := s.metricsMiddleware(next)
		req := httptest.NewRequest("GET", "/test", http.NoBody)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if !nextCalled {
			t.Error("next handler was not called")
		}
	})

	t.Run("Status is preserved", func(t *testing.T) {
		s := &Server{metrics: metrics.NewMetrics()}

		next := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}

		handler := s.metricsMiddleware(next)
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/test", http.NoBody))

		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
		}
	})

	t.Run("Active requests return to their level", func(t *testing.T) {
		s := &Server{metrics: metrics.NewMetrics()}
		gauge := func() float64 {
			families, err := s.metrics.Registry().Gather()
			if err != nil {
				t.Fatal(err)
			}
			for _, f := range families {
				if f.GetName() == "coinsim_active_requests" {
					return f.GetMetric()[0].GetGauge().GetValue()
				}
			}
			return 0
		}

		before := gauge()
		var during float64
		handler := s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			during = gauge()
		})
		handler(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", http.NoBody))

		if during != before+1 {
			t.Errorf("in-flight gauge = %v, want %v", during, before+1)
		}
		if after := gauge(); after != before {
			t.Errorf("gauge after request = %v, want %v", after, before)
		}
	})
}

func TestServer_loggingMiddleware(t *testing.T) {
	var buf strings.Builder
	s := &Server{logger: logging.NewLogger(&buf, "server")}

	handler := s.loggingMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/sessions/x/flip", http.NoBody))

	out := buf.String()
	if !strings.Contains(out, "request failed") || !strings.Contains(out, "/api/sessions/x/flip") {
		t.Errorf("expected a warning for the failed request, got %q", out)
	}
}

func TestServer_handleMetrics(t *testing.T) {
	t.Run("GET returns metrics", func(t *testing.T) {
		s := &Server{metrics: metrics.NewMetrics()}

		req := httptest.NewRequest("GET", "/metrics", http.NoBody)
		rec := httptest.NewRecorder()

		s.handleMetrics(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if !strings.Contains(rec.Body.String(), "coinsim_") {
			t.Error("response should contain coinsim metrics")
		}
	})

	for _, method := range []string{"POST", "PUT"} {
		t.Run(method+" returns method not allowed", func(t *testing.T) {
			s := &Server{metrics: metrics.NewMetrics(), logger: newTestLogger()}

			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestServer_RequestCounterUsesRoutePattern(t *testing.T) {
	srv := New(DefaultConfig(), nil, newTestLogger())
	h := srv.Handler()
	counter := func() float64 {
		c, err := srv.metrics.Registry().Gather()
		if err != nil {
			t.Fatal(err)
		}
		for _, f := range c {
			if f.GetName() != "coinsim_requests_total" {
				continue
			}
			for _, m := range f.GetMetric() {
				var path, status string
				for _, l := range m.GetLabel() {
					switch l.GetName() {
					case "path":
						path = l.GetValue()
					case "status":
						status = l.GetValue()
					}
				}
				if path == "GET /healthz" && status == "200" {
					return m.GetCounter().GetValue()
				}
			}
		}
		return 0
	}

	before := counter()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", http.NoBody))
	if got := counter(); got != before+1 {
		t.Errorf("requests counter = %v, want %v", got, before+1)
	}
	n, err := testutil.GatherAndCount(srv.metrics.Registry(), "coinsim_requests_total")
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("expected at least one request series")
	}
}

// testLogger is a minimal logger for testing that implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Warn(_ string, _ ...logging.Field)           {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
