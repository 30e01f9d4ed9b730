// Package metrics holds the Prometheus collectors for the dashboard API.
// Collectors are registered on the default registry and exposed through
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchQueries counts free-text segment searches, including ones that
	// matched nothing.
	SearchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldtrace_search_queries_total",
		Help: "Number of free-text segment searches served.",
	})

	// SearchDuration observes end-to-end search latency, database query
	// included.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldtrace_search_duration_seconds",
		Help:    "Latency of free-text segment searches.",
		Buckets: prometheus.DefBuckets,
	})

	// ThumbnailsServed counts segment thumbnail responses with image bytes.
	ThumbnailsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldtrace_thumbnails_served_total",
		Help: "Number of segment thumbnails served.",
	})

	// PingPages counts paged GPS ping responses.
	PingPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldtrace_ping_pages_total",
		Help: "Number of GPS ping pages served.",
	})

	// RouteWindows counts route window lookups issued by the map view.
	RouteWindows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldtrace_route_windows_total",
		Help: "Number of GPS route window lookups served.",
	})
)
