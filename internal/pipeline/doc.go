// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package pipeline turns queued upload jobs into processed photos.

A Pool runs a fixed number of workers over the durable queue. Each job is
handled by a Processor:

	pending ──▶ processing ──▶ completed
	               │   ▲            │
	               ▼   └────────────┤ (re-enqueue)
	             failed ────────────┘

Every status write goes through StateMachine, which persists it as a single
guarded update. A write whose source state is not allowed fails with
ErrInvalidTransition; the processor logs it and publishes nothing, so a
stale duplicate job can never overwrite a newer outcome.

Completed photos always carry thumbnail and watermarked paths. Failed
photos carry none. Originals are never removed.

Jobs are acknowledged once they reach a terminal outcome. A job interrupted
by shutdown is left unacknowledged and is redelivered on the next start.
*/
package pipeline
