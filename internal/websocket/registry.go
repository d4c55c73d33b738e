// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package websocket

import (
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
)

// Config holds per-client inbound limits.
type Config struct {
	InboundRate  float64 // messages per second
	InboundBurst int
}

// DefaultConfig allows five inbound messages per second with a burst of ten.
func DefaultConfig() Config {
	return Config{InboundRate: 5, InboundBurst: 10}
}

// Registry tracks live connections per user.
//
// The lock guards only the maps. Delivery snapshots the target clients and
// enqueues outside the lock; a client whose buffer is full or closed is
// disconnected.
type Registry struct {
	cfg Config

	mu     sync.Mutex
	users  map[int64]map[*Client]struct{}
	owners map[*Client]int64
}

// NewRegistry creates an empty Registry.
func NewRegistry(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.InboundRate <= 0 {
		cfg.InboundRate = def.InboundRate
	}
	if cfg.InboundBurst <= 0 {
		cfg.InboundBurst = def.InboundBurst
	}
	return &Registry{
		cfg:    cfg,
		users:  make(map[int64]map[*Client]struct{}),
		owners: make(map[*Client]int64),
	}
}

// Attach wraps an upgraded connection, registers it for userID and starts
// its pumps.
func (r *Registry) Attach(conn *websocket.Conn, userID int64) *Client {
	c := newClient(r, conn, rate.NewLimiter(rate.Limit(r.cfg.InboundRate), r.cfg.InboundBurst))
	r.Connect(c, userID)
	c.start()
	return c
}

// Connect registers c for userID and greets it.
func (r *Registry) Connect(c *Client, userID int64) {
	r.mu.Lock()
	if prev, ok := r.owners[c]; ok && prev != userID {
		r.removeLocked(c, prev)
	}
	set, ok := r.users[userID]
	if !ok {
		set = make(map[*Client]struct{})
		r.users[userID] = set
	}
	set[c] = struct{}{}
	r.owners[c] = userID
	total := len(r.owners)
	r.mu.Unlock()

	metrics.SetWebSocketConnections(total)
	logging.Info().Int64("user_id", userID).Int("total_clients", total).Msg("WebSocket client connected")

	if !c.trySend(connectionFrame(userID)) {
		r.Disconnect(c)
	}
}

// Disconnect removes c and closes its send channel. Repeated calls are
// no-ops.
func (r *Registry) Disconnect(c *Client) {
	r.mu.Lock()
	userID, ok := r.owners[c]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.removeLocked(c, userID)
	total := len(r.owners)
	r.mu.Unlock()

	c.closeSend()
	metrics.SetWebSocketConnections(total)
	logging.Info().Int64("user_id", userID).Int("total_clients", total).Msg("WebSocket client disconnected")
}

func (r *Registry) removeLocked(c *Client, userID int64) {
	delete(r.owners, c)
	if set, ok := r.users[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.users, userID)
		}
	}
}

// SendToUser delivers msg to every connection of userID and returns how
// many accepted it.
func (r *Registry) SendToUser(msg []byte, userID int64) int {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.users[userID]))
	for c := range r.users[userID] {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	return r.deliver(msg, clients)
}

// SendToUsers delivers msg to each distinct user in ids.
func (r *Registry) SendToUsers(msg []byte, ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	r.mu.Lock()
	var clients []*Client
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for c := range r.users[id] {
			clients = append(clients, c)
		}
	}
	r.mu.Unlock()

	return r.deliver(msg, clients)
}

// BroadcastAll delivers msg to every connection.
func (r *Registry) BroadcastAll(msg []byte) int {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.owners))
	for c := range r.owners {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	return r.deliver(msg, clients)
}

func (r *Registry) deliver(msg []byte, clients []*Client) int {
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	delivered := 0
	for _, c := range clients {
		if c.trySend(msg) {
			delivered++
			continue
		}
		logging.Debug().Uint64("client_id", c.id).Msg("Evicting WebSocket client after failed send")
		r.Disconnect(c)
	}
	return delivered
}

// ConnectedUsers returns the ids of users with at least one connection, in
// ascending order.
func (r *Registry) ConnectedUsers() []int64 {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ConnectionCount returns the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

// CloseAll disconnects every client.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.owners))
	for c := range r.owners {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		r.Disconnect(c)
	}
}
