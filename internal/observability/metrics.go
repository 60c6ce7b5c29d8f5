package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	GatewayCallsTotal       *prometheus.CounterVec
	GatewayCallDuration     *prometheus.HistogramVec
	ConnectionsInferred     *prometheus.CounterVec
	AnalysisDurationSeconds *prometheus.HistogramVec
	IssuesDetectedTotal     *prometheus.CounterVec
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// NewMetrics registers all metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics on reg
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GatewayCallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "meshscope_gateway_calls_total",
			Help: "Total registry gateway calls",
		}, []string{"operation", "outcome"}),

		GatewayCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meshscope_gateway_call_duration_seconds",
			Help:    "Registry gateway call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}, []string{"operation"}),

		ConnectionsInferred: f.NewCounterVec(prometheus.CounterOpts{
			Name: "meshscope_connections_inferred_total",
			Help: "Connections produced per inference tier",
		}, []string{"tier"}),

		AnalysisDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meshscope_analysis_duration_seconds",
			Help:    "Duration of analysis operations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}, []string{"operation"}),

		IssuesDetectedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "meshscope_issues_detected_total",
			Help: "Issues reported by analysis operations",
		}, []string{"scope"}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "meshscope_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meshscope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}, []string{"method", "path"}),
	}
}

// RecordGatewayCall records the outcome of one registry call
func (m *Metrics) RecordGatewayCall(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.GatewayCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordInferred adds n connections to the tier counter
func (m *Metrics) RecordInferred(tier string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ConnectionsInferred.WithLabelValues(tier).Add(float64(n))
}

// RecordAnalysis records analysis duration and reported issue count
func (m *Metrics) RecordAnalysis(operation string, issues int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisDurationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.IssuesDetectedTotal.WithLabelValues(operation).Add(float64(issues))
}
