// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

/*
Package websocket tracks authenticated WebSocket connections per user and
delivers notification frames to them.

	┌──────────┐
	│ Registry │  users:  user id -> set of clients
	└────┬─────┘  owners: client  -> user id
	     │
	┌────┴─────┬─────────┐
	│ Client   │ Client  │ ...
	└──────────┴─────────┘

Each Client runs two goroutines over a gorilla/websocket connection:

  - readPump: applies the read limit and pong deadline, answers every
    text frame with an echo (or an error once its rate limiter is
    exhausted), and disconnects on read failure.
  - writePump: drains the buffered send channel and pings periodically.

Delivery never blocks: frames are offered to the client's 256-slot buffer
and a client that cannot take one is disconnected.

Frames:

	{"type":"connection","message":"Connected to notifications","user_id":7}
	{"type":"echo","message":"Received","data":...}
	{"type":"error","message":"rate limit exceeded"}

photo_processed and like_update frames are built by the notify package.
*/
package websocket
