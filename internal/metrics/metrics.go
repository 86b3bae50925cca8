package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GuideSavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guide_saves_total",
			Help: "Total number of persisted guide documents",
		},
	)

	DraftAutosavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draft_autosaves_total",
			Help: "Total number of draft autosave writes",
		},
	)

	ResponsesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewer_responses_submitted_total",
			Help: "Total number of viewer responses saved",
		},
	)
)
