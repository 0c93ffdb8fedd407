package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beachsafety"

// Metrics holds the Prometheus collectors for aggregation, caching and the API.
type Metrics struct {
	// Source adapter metrics.
	SourceFetches  *prometheus.CounterVec   // labels: source, outcome={ok,absent}
	SourceDuration *prometheus.HistogramVec // labels: source

	// Aggregation metrics.
	AggregationDuration prometheus.Histogram
	AggregationFallback prometheus.Counter
	BeachesAggregated   prometheus.Gauge

	// Fleet cache metrics.
	CacheLookups       *prometheus.CounterVec // labels: result={hit,miss}
	CacheInvalidations prometheus.Counter

	HTTPRequests *prometheus.CounterVec // labels: method, route, status
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := build()
	reg.MustRegister(
		m.SourceFetches,
		m.SourceDuration,
		m.AggregationDuration,
		m.AggregationFallback,
		m.BeachesAggregated,
		m.CacheLookups,
		m.CacheInvalidations,
		m.HTTPRequests,
	)
	return m
}

// NewForTesting creates unregistered collectors so tests can build as many
// instances as they need.
func NewForTesting() *Metrics {
	return build()
}

func build() *Metrics {
	return &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Source adapter fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Source adapter fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a full fleet aggregation cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		AggregationFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_fallback_total",
			Help:      "Aggregation cycles that failed and served the reference fleet.",
		}),
		BeachesAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "beaches_aggregated",
			Help:      "Number of beaches in the last aggregation result.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fleet_cache_lookups_total",
			Help:      "Fleet cache lookups by result.",
		}, []string{"result"}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fleet_cache_invalidations_total",
			Help:      "Explicit fleet cache invalidations triggered by admin writes.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}
