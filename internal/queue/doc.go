// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

// Package queue provides the durable photo processing job queue.
//
// Jobs are stored in BadgerDB under "pending:<20-digit sequence>" so that a
// prefix scan yields them in enqueue order. A job stays in BadgerDB until it
// is acknowledged, which makes crash recovery a plain rescan on startup.
//
//	q, err := queue.Open(queue.Config{Path: "/data/queue", SyncWrites: true,
//	    RescanInterval: 5 * time.Second, CloseTimeout: 30 * time.Second})
//	go q.Serve(ctx)
//	for job := range q.Jobs() {
//	    process(job)
//	    q.Ack(job)
//	}
package queue
