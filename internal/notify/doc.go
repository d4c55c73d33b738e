// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package notify carries processing and engagement events from worker and
request goroutines to connected WebSocket clients.

	worker / handler ──post──▶ outbox (1024) ──▶ watermill gochannel
	                                             "notifications.outbound"
	                                                      │
	                                            Serve ────┘──▶ Registry

Posting is non-blocking. When the outbox is full the frame is dropped and
counted under eventsnap_notifications_total{outcome="dropped"}.

Processing results always use the photo_processed type; failures carry
status "failed" and a null thumbnail_url:

	{"type":"photo_processed","photo_id":3,"status":"failed","thumbnail_url":null,"message":"Photo processing failed"}

Like toggles are broadcast to everyone:

	{"type":"like_update","photo_id":3,"likes_count":2,"liked":true,"user_id":9}
*/
package notify
