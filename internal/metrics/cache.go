package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache and store Prometheus metrics.
var (
	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdex",
			Name:      "cache_total",
			Help:      "Result cache lookups by topic, tier and outcome",
		},
		[]string{"topic", "tier", "result"}, // result: "hit" / "miss" / "error"
	)

	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdex",
			Name:      "cache_invalidations_total",
			Help:      "Topic invalidations",
		},
		[]string{"topic"},
	)

	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reportdex",
			Name:      "store_query_duration_seconds",
			Help:      "Document store statement duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"statement"},
	)
)

var cacheMetricsRegistered bool

// RegisterCacheMetrics registers cache and store metrics. Must be called once from main.
func RegisterCacheMetrics() {
	if cacheMetricsRegistered {
		return
	}
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(CacheInvalidationsTotal)
	prometheus.MustRegister(StoreQueryDuration)
	cacheMetricsRegistered = true
}
