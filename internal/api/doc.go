// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package api provides the EventSnap HTTP surface on a chi router.

Routes:

	GET  /api/v1/health/live               liveness
	GET  /api/v1/health/ready              database ping, queue depth
	GET  /api/v1/photos                    search by event_id, photographer_id, date_from/date_to, tags, skip/limit
	POST /api/v1/photos/upload             multipart files[], optional event_id
	GET  /api/v1/photos/{id}               photo with engagement counters
	PUT  /api/v1/photos/{id}/tags          replace manual tags (owner, Admin, Coordinator)
	POST /api/v1/photos/{id}/tagged        tag a user (owner, Admin, Coordinator)
	POST /api/v1/photos/{id}/like          toggle the caller's like
	POST /api/v1/photos/{id}/comments      comment or reply
	GET  /api/v1/photos/{id}/comments      flat thread, oldest first
	POST /api/v1/photos/{id}/reprocess     re-enqueue (owner, Admin, Coordinator)
	GET  /api/v1/photos/{id}/download      original bytes or presigned redirect
	GET  /api/v1/me/library                liked or tagged photos, limit/offset
	GET  /ws                               WebSocket, token in header or ?token=
	GET  /metrics                          Prometheus

Everything except health, /metrics and /media requires a bearer JWT.
Every JSON response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "query_time_ms": 3}}
	{"status": "error", "data": null, "error": {"code": "PARENT_NOT_FOUND", "message": "..."}, ...}

Permission checks go through authz.PhotoAuthorizer; a denial is 403.
*/
package api
