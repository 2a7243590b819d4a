// Package metrics exposes Prometheus collectors for the HTTP surface and the
// ledger core. Collectors register once in the default registry; the handler
// is mounted on the API router at /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transaction outcomes as recorded on the transactions_total counter
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Ledger transactions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	feedPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_feed_published_total",
			Help: "Movements published to the feed.",
		},
	)

	registerOnce sync.Once
)

// Init registers the collectors in the default registry
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, transactionsTotal, feedPublishedTotal)
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed HTTP request
func ObserveRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// RecordTransaction records one ledger transaction outcome
func RecordTransaction(kind, outcome string) {
	transactionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordFeedPublished records movements published to the feed
func RecordFeedPublished(count int) {
	feedPublishedTotal.Add(float64(count))
}
