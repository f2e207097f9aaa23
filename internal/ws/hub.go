package ws

import (
	"encoding/json"
	"sync"
)

// Event types pushed to connected floor and kitchen screens.
const (
	EventOrderUpdated = "order.updated"
	EventTableUpdated = "table.updated"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// The whole restaurant is one room: every screen sees every update.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan Event

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, exists := h.clients[client]; exists {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client.
// This is the public API for handlers to push updates.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// BroadcastJSON marshals payload and broadcasts it under the given event type.
func (h *Hub) BroadcastJSON(eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.Broadcast(Event{Type: eventType, Payload: raw})
}
