package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Richardv10/food-blog/internal/metrics"
)

// Feed event types.
const (
	FeedShared   = "feed_shared"
	FeedUnshared = "feed_unshared"
)

// Message tells connected browsers that the public feed changed.
type Message struct {
	Type     string `json:"type"`
	RecipeID string `json:"recipe_id"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Hub maintains the set of active feed clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	metrics.WebSocketClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.WebSocketClients.Set(float64(len(h.clients)))
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Clients with a full
// buffer miss the message.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
	h.logger.Debug("feed broadcast", "type", msg.Type, "recipe_id", msg.RecipeID, "clients", len(h.clients))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
