// Package metrics exposes coinsim counters in the Prometheus format and
// small in-process meters used by the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments of the process. They live in a
// dedicated registry so tests and embedders do not collide with the
// default one.
type Metrics struct {
	registry       *prometheus.Registry
	handler        http.Handler
	flipsTotal     *prometheus.CounterVec
	commandsTotal  *prometheus.CounterVec
	activeRequests prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
	sessionsActive prometheus.Gauge
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide Metrics, creating it on first use.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		factory := promauto.With(reg)

		metricsInstance = &Metrics{
			registry: reg,
			handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			flipsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "coinsim_flips_total",
				Help: "Total number of coins flipped, by outcome",
			}, []string{"outcome"}),
			commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "coinsim_commands_total",
				Help: "Total number of session commands executed, by command",
			}, []string{"command"}),
			activeRequests: factory.NewGauge(prometheus.GaugeOpts{
				Name: "coinsim_active_requests",
				Help: "Number of HTTP requests currently being served",
			}),
			requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "coinsim_requests_total",
				Help: "Total number of HTTP requests, by route and status",
			}, []string{"path", "status"}),
			sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
				Name: "coinsim_sessions_active",
				Help: "Number of sessions held in memory by the server",
			}),
		}
	})
	return metricsInstance
}

// ObserveCommand records one executed session command.
func (m *Metrics) ObserveCommand(name string, heads, tails uint64) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(name).Inc()
	if heads > 0 {
		m.flipsTotal.WithLabelValues("heads").Add(float64(heads))
	}
	if tails > 0 {
		m.flipsTotal.WithLabelValues("tails").Add(float64(tails))
	}
}

// IncrementActiveRequests marks the start of an HTTP request.
func (m *Metrics) IncrementActiveRequests() {
	if m == nil {
		return
	}
	m.activeRequests.Inc()
}

// DecrementActiveRequests marks the end of an HTTP request.
func (m *Metrics) DecrementActiveRequests() {
	if m == nil {
		return
	}
	m.activeRequests.Dec()
}

// ObserveRequest counts a finished request. path must be a route pattern,
// not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(path string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// SetSessionsActive reports how many sessions are held in memory.
func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// Registry returns the dedicated registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WritePrometheus serves the metrics in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
