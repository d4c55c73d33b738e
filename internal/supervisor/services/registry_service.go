// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/eventsnap/internal/logging"
)

// ConnectionCloser is satisfied by *websocket.Registry.
type ConnectionCloser interface {
	ConnectionCount() int
	CloseAll()
}

// RegistryService closes every WebSocket connection on shutdown so clients
// see a close frame instead of a dropped socket.
type RegistryService struct {
	registry ConnectionCloser
}

var _ suture.Service = (*RegistryService)(nil)

// NewRegistryService wraps the connection registry.
func NewRegistryService(r ConnectionCloser) *RegistryService {
	return &RegistryService{registry: r}
}

// Serve blocks until ctx is cancelled, then disconnects all clients.
func (s *RegistryService) Serve(ctx context.Context) error {
	<-ctx.Done()
	logging.Info().
		Str("component", s.String()).
		Int("connections", s.registry.ConnectionCount()).
		Msg("Closing WebSocket connections")
	s.registry.CloseAll()
	return ctx.Err()
}

func (s *RegistryService) String() string { return "connection-registry" }
