// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package services adapts EventSnap components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - QueueFeederService: the durable queue's feeder loop.
  - WorkerPoolService: the processing workers.
  - DispatcherService: notification delivery.
  - RegistryService: closes WebSocket connections on shutdown.

Adapters accept small interfaces rather than concrete types so this package
does not import the components it supervises.
*/
package services
