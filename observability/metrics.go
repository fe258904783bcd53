package observability

import (
	"errors"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WalkDuration tracks graph walk duration by scheduling mode
	WalkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gorestore_walk_duration_seconds",
			Help:    "Dependency graph walk duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"mode"}, // sync, concurrent
	)

	// WalkNodesTotal counts walked nodes by final state
	WalkNodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_walk_nodes_total",
			Help: "Total number of graph nodes by state",
		},
		[]string{"state"}, // resolved, eclipsed, unresolved
	)

	// CyclesTotal counts walks aborted by a dependency cycle
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gorestore_cycles_total",
			Help: "Total number of walks aborted by a dependency cycle",
		},
	)

	// ProviderLookupsTotal counts provider describe calls by provider and result
	ProviderLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_provider_lookups_total",
			Help: "Total number of provider lookups by provider and result",
		},
		[]string{"provider", "result"}, // result: match, miss, error
	)

	// MemoHitsTotal counts resolutions served from the walk memo
	MemoHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_memo_hits_total",
			Help: "Total number of memoized resolutions by key kind",
		},
		[]string{"kind"}, // range, identity
	)

	// FeedCacheHitsTotal counts feed lookups answered from the in-memory cache
	FeedCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gorestore_feed_cache_hits_total",
			Help: "Total number of feed lookups served from cache",
		},
	)

	// FeedCacheMissesTotal counts feed lookups that reached the feed
	FeedCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gorestore_feed_cache_misses_total",
			Help: "Total number of feed lookups not served from cache",
		},
	)

	// LockFileReadsTotal counts lock file reads by result
	LockFileReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_lockfile_reads_total",
			Help: "Total number of lock file reads by result",
		},
		[]string{"result"}, // ok, malformed, missing
	)

	// LockFileWritesTotal counts lock file writes by outcome
	LockFileWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_lockfile_writes_total",
			Help: "Total number of lock file writes by outcome",
		},
		[]string{"outcome"}, // written, unchanged
	)

	// CompatibilityIssuesTotal counts compatibility issues by kind
	CompatibilityIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gorestore_compatibility_issues_total",
			Help: "Total number of compatibility issues by kind",
		},
		[]string{"kind"},
	)
)

// ObserveWalk records a finished walk.
func ObserveWalk(mode string, start time.Time) {
	WalkDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer serves /metrics on addr until the server fails.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}
	return counterValue(metric)
}

// GetPlainCounterValue retrieves the current value of an unlabeled counter.
func GetPlainCounterValue(counter prometheus.Counter) (float64, error) {
	return counterValue(counter)
}

func counterValue(metric prometheus.Metric) (float64, error) {
	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}
	return 0, nil
}
