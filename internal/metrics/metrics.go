// Package metrics defines the Prometheus metrics the API client records. It
// is the single source of truth for metric names, labels, and help strings;
// everything registers against the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stratcom"

// RequestsTotal counts API round trips.
// Labels:
//   - method: HTTP method
//   - endpoint: route template (e.g. "/jobs/:id"), never the concrete path
//   - status: numeric HTTP status, or "error" when the request never completed
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of API requests issued, by method, endpoint and outcome.",
	},
	[]string{"method", "endpoint", "status"},
)

// RequestDuration measures wall time per round trip.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests from send to response headers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "endpoint"},
)

// UploadsTotal counts submission uploads by result ("ok" or "error").
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of submission uploads, by result.",
	},
	[]string{"result"},
)

// DownloadsTotal counts submission downloads by result ("ok" or "error").
var DownloadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Total number of submission downloads, by result.",
	},
	[]string{"result"},
)
