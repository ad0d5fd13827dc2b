package rastertile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the tile cache, tile loader, and prefetch pool.
// Registered once at package init and updated from the hot paths in
// tilecache.go, tileloader.go, prefetch.go, and httpserver.go.
var (
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rastertile",
		Subsystem: "tile_cache",
		Name:      "hits_total",
		Help:      "Number of tile cache lookups served from cache.",
	})
	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rastertile",
		Subsystem: "tile_cache",
		Name:      "misses_total",
		Help:      "Number of tile cache lookups that required a decode.",
	})
	tileLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rastertile",
		Subsystem: "tile_loader",
		Name:      "load_duration_seconds",
		Help:      "Time to decompress and un-predict a single tile.",
		Buckets:   prometheus.DefBuckets,
	})
	prefetchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rastertile",
		Subsystem: "prefetch",
		Name:      "queue_depth",
		Help:      "Number of prefetch requests currently buffered in the pool's request channel.",
	})
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rastertile",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests handled, by route and status code.",
	}, []string{"route", "status"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rastertile",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		cacheHitsTotal,
		cacheMissesTotal,
		tileLoadDuration,
		prefetchQueueDepth,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// observeTileLoadDuration records how long a tile decode took.
func observeTileLoadDuration(start time.Time) {
	tileLoadDuration.Observe(time.Since(start).Seconds())
}
