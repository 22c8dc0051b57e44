package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics of the schedule pipeline
type Metrics struct {
	WindowsFetched  prometheus.Counter
	WindowsFailed   prometheus.Counter
	RecordsStored   prometheus.Counter
	RecordsSkipped  prometheus.Counter
	RecordsRejected prometheus.Counter
	TimeFallbacks   *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CommitTime      prometheus.Histogram
	RunsByStatus    *prometheus.CounterVec
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WindowsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_windows_fetched_total",
			Help:      "The total number of time windows fetched from the flight-data API",
		}),
		WindowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_windows_failed_total",
			Help:      "The total number of time windows that failed to fetch or store",
		}),
		RecordsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_stored_total",
			Help:      "The total number of flight schedules written to the shard store",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_skipped_total",
			Help:      "The total number of flight schedules skipped because they already existed",
		}),
		RecordsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_rejected_total",
			Help:      "The total number of flight schedules rejected for missing airport codes",
		}),
		TimeFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_parse_fallbacks_total",
			Help:      "Provider time strings that could not be parsed strictly",
		}, []string{"kind"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "month_cache_hits_total",
			Help:      "Route/month queries served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "month_cache_misses_total",
			Help:      "Route/month queries that fanned out to the shard store",
		}),
		CommitTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_commit_seconds",
			Help:      "Time taken to commit one write batch",
			Buckets:   prometheus.DefBuckets,
		}),
		RunsByStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_runs_total",
			Help:      "Collection runs by terminal status",
		}, []string{"status"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
