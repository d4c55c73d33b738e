// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: propagates or generates X-Request-ID and seeds the logging
    context with request and correlation IDs.
  - PrometheusMetrics: request counter, duration histogram and in-flight
    gauge, labelled by chi route pattern.
  - RequestLogger: one structured log line per request, warn when slow.
  - Compression: gzip for JSON responses.

All middleware use the func(http.Handler) http.Handler shape accepted by
chi's Router.Use. Status capture goes through chi's WrapResponseWriter,
which keeps http.Hijacker available for WebSocket upgrades.

Order in the router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger(middleware.DefaultSlowThreshold))
*/
package middleware
