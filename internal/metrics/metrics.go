package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "binfinder"

// Registry holds every bin-finder metric. It is exposed on /metrics.
var Registry = prometheus.NewRegistry()

var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, version in labels)",
	},
	[]string{"version"},
)

// BinsLoaded is the number of bins in the active dataset, split by whether
// they have usable coordinates.
var BinsLoaded = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bins_loaded",
		Help:      "Number of clothing bins in the loaded dataset",
	},
	[]string{"located"},
)

// Search metrics
var (
	SearchesTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Address searches by outcome (hit, empty, blank)",
		},
		[]string{"outcome"},
	)

	SearchResults = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 15},
		},
	)
)

// Distance metrics
var (
	DistanceCalculationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distance_calculations_total",
			Help:      "Distance calculations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// Geocoding metrics
var (
	GeocodingCacheHitsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoding_cache_hits_total",
			Help:      "Reverse geocoding lookups served from cache",
		},
	)

	GeocodingCacheMissesTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoding_cache_misses_total",
			Help:      "Reverse geocoding lookups that called Nominatim",
		},
	)

	GeocodingFailuresTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoding_failures_total",
			Help:      "Reverse geocoding lookups that failed after retries",
		},
	)
)

// Batch job metrics
var (
	JobsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Batch jobs by mode and final status",
		},
		[]string{"mode", "status"},
	)

	JobsRunning = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Batch jobs currently processing",
		},
	)
)

// Sessions is the number of live per-browser states.
var Sessions = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Live session states",
	},
)

var initOnce sync.Once

// Init registers the runtime collectors and records the version. Safe to
// call more than once.
func Init(version string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.WithLabelValues(version).Set(1)
}

// Outcome maps an error to the outcome label used by counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
