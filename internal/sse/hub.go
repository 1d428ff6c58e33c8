// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package sse pushes live gate events to dashboard clients.
package sse

import (
	"sync"

	"github.com/samber/lo"
)

// client is one connected dashboard with its delivery channel.
type client struct {
	ch       chan string
	location string
}

// Hub manages SSE clients per gate location. A dashboard watching one
// gate subscribes with that location; the admin overview subscribes to
// all gates with an empty location.
type Hub struct {
	clients map[string][]client
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string][]client)}
}

// Register adds a client for the given gate location (empty for all
// gates). Returns the channel to receive events on.
func (h *Hub) Register(location string) chan string {
	ch := make(chan string, 10) // buffered to prevent blocking

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[location] = append(h.clients[location], client{ch: ch, location: location})
	return ch
}

// Unregister removes a client channel and closes it.
func (h *Hub) Unregister(location string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[location]
	h.clients[location] = lo.Filter(clients, func(c client, _ int) bool {
		return c.ch != ch
	})
	if len(h.clients[location]) == 0 {
		delete(h.clients, location)
	}

	close(ch)
}

// Publish sends an event to clients watching the given gate and to
// clients watching all gates.
func (h *Hub) Publish(location, message string) {
	h.mu.RLock()
	targets := append([]client(nil), h.clients[location]...)
	if location != "" {
		targets = append(targets, h.clients[""]...)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.ch <- message:
		default:
			// Channel full, skip (prevents blocking)
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			select {
			case c.ch <- message:
			default:
				// Channel full, skip
			}
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []client) int {
		return len(clients)
	})
}
