// Package ws streams engine lifecycle events to WebSocket clients, so a
// visual editor can animate node states without polling.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weftlabs/weft/pkg/domain"
)

// Event is the wire shape of one lifecycle notification.
type Event struct {
	Type      domain.EventType `json:"type"`
	NodeID    string           `json:"nodeId,omitempty"`
	Kind      string           `json:"kind,omitempty"`
	State     domain.RunState  `json:"state,omitempty"`
	Error     string           `json:"error,omitempty"`
	Targets   []string         `json:"targets,omitempty"`
	Tick      uint64           `json:"tick,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Hub maintains the set of active clients and fans events out to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mu      sync.RWMutex
	clients map[*Client]struct{}

	done   chan struct{}
	logger *slog.Logger
}

// NewHub creates a hub. Call Run in a goroutine to start it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run drives the hub's event loop until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("websocket client connected", "clients", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected", "clients", h.ClientCount())

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow client; drop rather than stall the loop.
					h.logger.Warn("websocket client buffer full, dropping event", "type", event.Type)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Close stops the hub and disconnects all clients.
func (h *Hub) Close() {
	close(h.done)
}

// Broadcast queues an event for delivery to every connected client.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Hooks returns lifecycle hooks that broadcast every engine event
// through the hub. Attach them with weft.WithLifecycleHooks.
func (h *Hub) Hooks() domain.LifecycleHooks {
	nodeEvent := func(_ context.Context, ev *domain.NodeEvent) {
		h.Broadcast(Event{
			Type:      ev.Type,
			NodeID:    ev.NodeID,
			Kind:      ev.Kind,
			State:     ev.State,
			Error:     ev.Error,
			Timestamp: ev.Timestamp,
		})
	}
	return domain.LifecycleHooks{
		OnNodeStart:    nodeEvent,
		OnNodeComplete: nodeEvent,
		OnNodeFail:     nodeEvent,
		OnTrigger: func(_ context.Context, ev *domain.TriggerEvent) {
			h.Broadcast(Event{
				Type:      domain.EventTrigger,
				NodeID:    ev.SourceID,
				Targets:   ev.Targets,
				Tick:      ev.Tick,
				Timestamp: ev.Timestamp,
			})
		},
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface is open to any origin; the event stream matches.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to WebSocket connections on the hub.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		client := newClient(h, conn)
		h.register <- client
		go client.writePump()
		go client.readPump()
	}
}

// marshalEvent is split out for the write pump.
func marshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
