// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Import metrics
	ImportsTotal        *prometheus.CounterVec
	ImportDuration      prometheus.Histogram
	RowsParsed          prometheus.Counter
	TradesReconstructed prometheus.Counter
	TradesStored        prometheus.Counter
	Diagnostics         *prometheus.CounterVec

	// Store metrics
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec
	StoredTrades  prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tradejournal"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Total number of import runs by status",
		}, []string{"status"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Import pipeline duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_parsed_total",
			Help:      "Total number of execution rows parsed",
		}),
		TradesReconstructed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "trades_reconstructed_total",
			Help:      "Total number of round-trip trades reconstructed",
		}),
		TradesStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "trades_stored_total",
			Help:      "Total number of new trades written to the journal",
		}),
		Diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "diagnostics_total",
			Help:      "Total number of pipeline diagnostics by kind",
		}, []string{"kind"}),

		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "operation_duration_seconds",
			Help:      "Trade store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "operation_errors_total",
			Help:      "Total number of trade store errors",
		}, []string{"operation"}),
		StoredTrades: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "trades",
			Help:      "Number of trades in the journal after the last write",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordImport records one pipeline run.
func (m *Metrics) RecordImport(status string, seconds float64, rows, reconstructed, stored int) {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(status).Inc()
	m.ImportDuration.Observe(seconds)
	m.RowsParsed.Add(float64(rows))
	m.TradesReconstructed.Add(float64(reconstructed))
	m.TradesStored.Add(float64(stored))
}

// RecordDiagnostic counts one diagnostic of kind.
func (m *Metrics) RecordDiagnostic(kind string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(kind).Inc()
}

// RecordStoreOp records trade store metrics.
func (m *Metrics) RecordStoreOp(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

// SetStoredTrades updates the journal size gauge.
func (m *Metrics) SetStoredTrades(n int) {
	if m == nil {
		return
	}
	m.StoredTrades.Set(float64(n))
}

// RecordHTTP records one served request.
func (m *Metrics) RecordHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
