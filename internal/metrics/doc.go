// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package metrics provides Prometheus instrumentation for EventSnap.

Collectors are registered with the default registry through promauto and
exposed on /metrics by promhttp in the API router.

# Available Metrics

Pipeline:
  - eventsnap_jobs_enqueued_total
  - eventsnap_jobs_completed_total{status}
  - eventsnap_job_duration_seconds{status}
  - eventsnap_queue_depth

Tagging:
  - eventsnap_tagger_outcomes_total{outcome}
  - eventsnap_circuit_breaker_state{name}
  - eventsnap_circuit_breaker_transitions_total{name,to_state}

Engagement and notifications:
  - eventsnap_like_toggles_total{action}
  - eventsnap_comments_created_total
  - eventsnap_websocket_connections_active
  - eventsnap_notifications_total{type,outcome}

HTTP and storage:
  - eventsnap_api_requests_total{method,endpoint,status_code}
  - eventsnap_api_request_duration_seconds{method,endpoint}
  - eventsnap_api_active_requests
  - eventsnap_duckdb_query_duration_seconds{operation}
  - eventsnap_duckdb_query_errors_total{operation}

# Usage

Call the Record/Set helpers rather than the collectors directly:

	metrics.RecordJobCompleted("completed", time.Since(start))
	metrics.RecordNotification("like_update", "delivered")
*/
package metrics
