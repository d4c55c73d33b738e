// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package models defines the EventSnap domain types shared by the database,
// pipeline, engagement and API layers.
//
// Photo lifecycle:
//
//	pending -> processing -> completed
//	                      -> failed
//
// completed and failed may re-enter processing only through a fresh enqueue.
// Engagement rows are created lazily on the first like or comment for a
// photo, and LikesCount always equals the number of Like rows for it.
package models
