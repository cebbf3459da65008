package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the API. Each Handler owns its
// own registry so tests can build as many handlers as they like.
type Metrics struct {
	registry *prometheus.Registry

	// ChainBuilds counts calendar builds by result: ok, inactive,
	// client_error, error.
	ChainBuilds *prometheus.CounterVec

	// CountDuration observes the batched count queries.
	CountDuration prometheus.Histogram

	// CountBuckets observes how many pages a count query covered.
	CountBuckets prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChainBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calendar",
			Name:      "chain_builds_total",
			Help:      "Calendar chain builds by result.",
		}, []string{"result"}),
		CountDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "calendar",
			Name:      "count_duration_seconds",
			Help:      "Duration of batched per-page count queries.",
			Buckets:   prometheus.DefBuckets,
		}),
		CountBuckets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "calendar",
			Name:      "count_pages",
			Help:      "Number of pages counted per count query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	m.registry.MustRegister(m.ChainBuilds, m.CountDuration, m.CountBuckets)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
