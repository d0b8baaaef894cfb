// Package metrics provides Prometheus metrics for the landing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog_landing"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	CMSRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cms",
			Name:      "requests_total",
			Help:      "CMS GraphQL requests by operation and result",
		},
		[]string{"operation", "result"},
	)

	CMSRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cms",
			Name:      "request_duration_seconds",
			Help:      "CMS GraphQL request duration in seconds, retries included",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	SnapshotPosts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "posts",
			Help:      "Normalized posts in the current snapshot by collection",
		},
		[]string{"collection"},
	)

	SnapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "refreshes_total",
			Help:      "Snapshot refreshes by source (cms, store) and result",
		},
		[]string{"source", "result"},
	)

	SnapshotLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful snapshot refresh",
		},
	)

	BrowseResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "browse",
			Name:      "results",
			Help:      "Number of posts matching a browse request",
			Buckets:   []float64{0, 1, 5, 18, 36, 100, 250, 500},
		},
	)

	CarouselSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "carousel",
			Name:      "sessions",
			Help:      "Open featured carousel sessions",
		},
	)
)

// ObserveCMS records one CMS operation.
func ObserveCMS(operation string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CMSRequestsTotal.WithLabelValues(operation, result).Inc()
	CMSRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordSnapshot records a published snapshot.
func RecordSnapshot(source string, technology, community int, at time.Time) {
	SnapshotRefreshes.WithLabelValues(source, "success").Inc()
	SnapshotPosts.WithLabelValues("technology").Set(float64(technology))
	SnapshotPosts.WithLabelValues("community").Set(float64(community))
	SnapshotLastRefresh.Set(float64(at.Unix()))
}

func RecordRefreshFailure(source string) {
	SnapshotRefreshes.WithLabelValues(source, "error").Inc()
}
