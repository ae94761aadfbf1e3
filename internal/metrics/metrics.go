package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxlens_upstream_calls_total",
			Help: "Total upstream weather API calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wxlens_upstream_latency_seconds",
			Help:    "Upstream API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxlens_cache_hits_total",
			Help: "Station-day lookups served from the SQLite cache",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxlens_cache_misses_total",
			Help: "Station-day lookups that required an upstream fetch",
		},
		[]string{"kind"},
	)

	ConditionsDerived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wxlens_conditions_derived_total",
			Help: "Station-days run through the condition derivation pipeline",
		},
	)
)
