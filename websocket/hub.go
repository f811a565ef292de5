package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is a booking lifecycle notification pushed to admin dashboards.
type Event struct {
	Type      string      `json:"type"`
	BookingID uint        `json:"booking_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Event types broadcast by the booking routes.
const (
	EventBookingCreated = "booking_created"
	EventBookingUpdated = "booking_updated"
	EventBookingPaid    = "booking_paid"
)

// Hub manages connected admin dashboard clients
type Hub struct {
	// Registered clients, keyed by user ID
	Clients map[uint]*Client

	// Broadcast channel for events to all clients
	Broadcast chan *Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Broadcast:  make(chan *Event, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			// A reconnect for the same user displaces the old connection;
			// closing its channel lets the old writePump exit.
			if old, ok := h.Clients[client.ID]; ok {
				close(old.Send)
			}
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Dashboard client connected: user %d", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			// The displaced connection's teardown must not evict its
			// replacement, so match on identity, not just ID.
			if current, ok := h.Clients[client.ID]; ok && current == client {
				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("Dashboard client disconnected: user %d", client.ID)

		case event := <-h.Broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Notify queues an event without blocking the caller. Events are dropped if
// the hub is saturated; the dashboard reloads on reconnect anyway.
func (h *Hub) Notify(eventType string, bookingID uint, data interface{}) {
	event := &Event{
		Type:      eventType,
		BookingID: bookingID,
		Data:      data,
		Timestamp: time.Now(),
	}
	select {
	case h.Broadcast <- event:
	default:
		log.Printf("Event channel full, dropping %s for booking %d", eventType, bookingID)
	}
}

// broadcastEvent sends an event to all connected clients
func (h *Hub) broadcastEvent(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.Clients {
		select {
		case client.Send <- payload:
		default:
			log.Printf("Client %d send buffer full, skipping", id)
		}
	}
}
