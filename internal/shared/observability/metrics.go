// # internal/shared/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	CompileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jounce_compile_stage_seconds",
		Help:    "Time spent in each compile pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	CompilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jounce_compiles_total",
		Help: "Total compilations by outcome (ok, failed).",
	}, []string{"outcome"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jounce_diagnostics_total",
		Help: "Total diagnostics emitted by severity.",
	}, []string{"severity"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jounce_cache_hits_total",
		Help: "Total compilation cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jounce_cache_misses_total",
		Help: "Total compilation cache misses.",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jounce_cache_invalidations_total",
		Help: "Total explicit cache invalidations.",
	})

	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jounce_cache_entries",
		Help: "Current number of entries in the in-memory cache.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jounce_watcher_events_total",
		Help: "Total file system events received by the watcher.",
	})

	RebuildsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jounce_rebuilds_throttled_total",
		Help: "Total watch-mode rebuilds delayed by the rate limiter.",
	})

	ArtifactBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jounce_artifact_bytes",
		Help: "Size of the most recent artifact by kind (client, server, css).",
	}, []string{"kind"})
)
