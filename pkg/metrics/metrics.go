package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by operation (login|register) and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peerfeed_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"},
	)

	// FeedbackSubmitted counts stored feedback entries by sentiment.
	FeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peerfeed_feedback_submitted_total",
			Help: "Total number of feedback entries submitted",
		},
		[]string{"sentiment"},
	)

	// FeedbackRequests counts feedback solicitations by priority.
	FeedbackRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peerfeed_feedback_requests_total",
			Help: "Total number of feedback requests created",
		},
		[]string{"priority"},
	)

	// NotificationsCreated counts notifications by type (feedback|request|general).
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peerfeed_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	// RealtimeConnections tracks open websocket subscribers.
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "peerfeed_realtime_connections",
			Help: "Number of connected realtime subscribers",
		},
	)

	// MaintenanceRuns counts background job executions by job and result.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peerfeed_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "peerfeed_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
