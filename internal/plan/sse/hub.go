package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is one Server-Sent Event relayed to UI clients.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one connected browser subscribed to a project's generation events.
type Client struct {
	ID        string
	ProjectID string
	Events    chan Event
}

// Hub fans generation events out to the subscribed clients of each project.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Register adds a client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.log.Info("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("project_id", client.ProjectID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.log.Info("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// Publish sends an event to every client subscribed to the project. Slow
// clients with a full buffer are skipped, not blocked on.
func (h *Hub) Publish(projectID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.ProjectID != projectID {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.log.Warn("sse client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("event", event.EventType))
		}
	}
}

// PublishJSON marshals payload and publishes it under the given event type.
func (h *Hub) PublishJSON(projectID, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("failed to marshal sse payload", zap.Error(err))
		return
	}
	h.Publish(projectID, Event{EventType: eventType, Data: string(data)})
}
