// Package hub fans score samples out to dashboard websocket clients
// using a channel-based broadcast loop.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/scoring"
)

// Hub maintains the set of connected clients and broadcasts encoded
// samples to them. Slow clients are dropped rather than allowed to
// stall the pipeline.
type Hub struct {
	name string

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// New creates a hub. Run must be started in a goroutine before
// clients attach.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the hub's register/unregister/broadcast loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client connected", "hub", h.name, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client disconnected", "hub", h.name, "clients", count)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full, they are too slow to keep.
					close(client.send)
					delete(h.clients, client)
					log.Warn("dropped slow hub client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastSample encodes a score sample and queues it for all
// connected clients. Samples are dropped when the broadcast channel
// is full.
func (h *Hub) BroadcastSample(s scoring.ScoreSample) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	h.send(data)
	return nil
}

// BroadcastJSON encodes and queues an arbitrary message, used for
// run lifecycle events alongside the sample stream.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.send(data)
	return nil
}

func (h *Hub) send(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Warn("hub broadcast channel full, dropping message", "hub", h.name)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
