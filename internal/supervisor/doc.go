// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package supervisor runs EventSnap's long-lived goroutines under a suture v4
tree.

	eventsnap (root)
	├── data-layer
	│   └── queue-feeder
	├── messaging-layer
	│   ├── notification-dispatcher
	│   └── worker-pool
	└── api-layer
	    ├── connection-registry
	    └── http-server

Supervisor events (restarts, backoff, panics) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

Service adapters live in the services subpackage. Each names itself via
String() so restarts are attributable in logs.
*/
package supervisor
