package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dashboard queries that failed and were replaced by zero values
	DashboardQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_query_failures_total",
			Help: "Dashboard queries that failed and were reported as empty",
		},
		[]string{"query"},
	)

	DashboardQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_query_duration_seconds",
			Help:    "Dashboard query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"query"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	PaymentStatusRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_status_recomputations_total",
			Help: "Cost payment status recomputations by resulting status",
		},
		[]string{"status"},
	)

	// Set after every integrity scan
	IntegrityIssues = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "integrity_issues_found",
			Help: "Inconsistencies found by the last integrity scan",
		},
		[]string{"kind"},
	)

	ExportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_generated_total",
			Help: "Generated report files by format",
		},
		[]string{"format", "archived"},
	)
)

// RecordDashboardQuery records the duration of one dashboard query and counts failures
func RecordDashboardQuery(query string, duration time.Duration, err error) {
	DashboardQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		DashboardQueryFailures.WithLabelValues(query).Inc()
	}
}

// RecordHTTPRequest records an HTTP request duration
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordPaymentStatus counts a recomputed cost status
func RecordPaymentStatus(status string) {
	PaymentStatusRecomputations.WithLabelValues(status).Inc()
}

// SetIntegrityIssues publishes the size of each issue class
func SetIntegrityIssues(kind string, count int) {
	IntegrityIssues.WithLabelValues(kind).Set(float64(count))
}

// RecordExport counts a generated export file
func RecordExport(format string, archived bool) {
	a := "false"
	if archived {
		a = "true"
	}
	ExportsGenerated.WithLabelValues(format, a).Inc()
}
