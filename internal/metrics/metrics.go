// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Processing Pipeline Metrics
	JobsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventsnap_jobs_enqueued_total",
			Help: "Total number of photo processing jobs enqueued",
		},
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_jobs_completed_total",
			Help: "Total number of photo processing jobs finished, by outcome",
		},
		[]string{"status"}, // "completed", "failed", "rejected"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventsnap_job_duration_seconds",
			Help:    "Duration of photo processing jobs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventsnap_queue_depth",
			Help: "Number of processing jobs waiting for acknowledgement",
		},
	)

	// Tagging Metrics
	TaggerOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_tagger_outcomes_total",
			Help: "Classifier invocations by outcome",
		},
		[]string{"outcome"}, // "ok", "unavailable", "error", "breaker_open", "timeout"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventsnap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "to_state"},
	)

	// Engagement Metrics
	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_like_toggles_total",
			Help: "Total number of like toggles, by resulting state",
		},
		[]string{"action"}, // "like", "unlike"
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventsnap_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	// WebSocket Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventsnap_websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_notifications_total",
			Help: "Notification deliveries by message type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: "delivered", "offline", "dropped"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventsnap_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventsnap_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Authorization Metrics
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_authz_decisions_total",
			Help: "Authorization decisions by action and result",
		},
		[]string{"action", "result"}, // result: "allowed", "denied"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventsnap_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventsnap_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	DBTxRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventsnap_duckdb_tx_retries_total",
			Help: "Total number of DuckDB transactions rerun after a write conflict",
		},
	)
)

// RecordJobEnqueued counts an enqueued processing job.
func RecordJobEnqueued() {
	JobsEnqueued.Inc()
}

// RecordJobCompleted records the outcome and duration of a processing job.
func RecordJobCompleted(status string, duration time.Duration) {
	JobsCompleted.WithLabelValues(status).Inc()
	JobDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// SetQueueDepth reports the number of unacknowledged jobs.
func SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}

// RecordTaggerOutcome counts one classifier invocation.
func RecordTaggerOutcome(outcome string) {
	TaggerOutcomes.WithLabelValues(outcome).Inc()
}

// SetBreakerState records a circuit breaker transition. state follows
// gobreaker's ordering: 0 closed, 1 half-open, 2 open.
func SetBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, breakerStateName(state)).Inc()
}

func breakerStateName(state int) string {
	switch state {
	case 0:
		return "closed"
	case 1:
		return "half-open"
	case 2:
		return "open"
	default:
		return "unknown"
	}
}

// RecordLikeToggle counts a like toggle by its resulting state.
func RecordLikeToggle(liked bool) {
	if liked {
		LikeToggles.WithLabelValues("like").Inc()
	} else {
		LikeToggles.WithLabelValues("unlike").Inc()
	}
}

// RecordCommentCreated counts a created comment.
func RecordCommentCreated() {
	CommentsCreated.Inc()
}

// SetWebSocketConnections reports the number of live connections.
func SetWebSocketConnections(n int) {
	WSConnectionsActive.Set(float64(n))
}

// RecordNotification counts one notification delivery attempt.
func RecordNotification(msgType, outcome string) {
	Notifications.WithLabelValues(msgType, outcome).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthzDecision counts one authorization decision.
func RecordAuthzDecision(action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AuthzDecisions.WithLabelValues(action, result).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordDBRetry counts a transaction rerun after a conflict.
func RecordDBRetry() {
	DBTxRetries.Inc()
}
