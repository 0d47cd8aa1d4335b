package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all client-side metrics
type Metrics struct {
	// Request wrapper metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Query cache metrics
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	InflightJoins prometheus.Counter
	ReadRetries   *prometheus.CounterVec

	// Circuit breaker metrics
	BreakerOpens     prometheus.Counter
	BreakerShortCuts prometheus.Counter
}

// NewMetrics creates and registers all metrics against the given
// registerer. Pass a fresh prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"operation", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Round-trip duration of API requests",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		RequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of failed API requests by error kind",
		}, []string{"operation", "kind"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Total number of query cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Total number of query cache misses",
		}),
		InflightJoins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_inflight_joins_total",
			Help:      "Total number of requests deduplicated onto an in-flight call",
		}),
		ReadRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_retries_total",
			Help:      "Total number of automatic retries of read operations",
		}, []string{"operation"}),
		BreakerOpens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_opens_total",
			Help:      "Total number of circuit breaker open transitions",
		}),
		BreakerShortCuts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_shortcircuits_total",
			Help:      "Total number of requests refused by an open breaker",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for callers
// that do not scrape.
func NewNop() *Metrics {
	return NewMetrics("healthcompare", prometheus.NewRegistry())
}
