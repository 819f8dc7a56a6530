package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/binding"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Dispatcher recomputes every chart bound to an input for a new value
type Dispatcher interface {
	Dispatch(ctx context.Context, input, value string) ([]binding.Update, error)
}

// Hub maintains the set of active dashboard clients
type Hub struct {
	// Registered clients by client ID
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	dispatcher Dispatcher

	// Per-client limit for selection messages
	limit rate.Limit
	burst int

	mutex   sync.RWMutex
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// inboundMessage is a message received from the browser; Data is decoded
// according to Type
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SelectRequest is the payload of a "select" message
type SelectRequest struct {
	Input string `json:"input"`
	Value string `json:"value"`
}

// ErrorPayload is the payload of an "error" message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Output  string `json:"output,omitempty"`
}

// Message types
const (
	TypeConnection = "connection"
	TypePing       = "ping"
	TypePong       = "pong"
	TypeSelect     = "select"
	TypeRefresh    = "refresh"
	TypeFigure     = "figure"
	TypeError      = "error"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Outbound queue per client; a selection produces one message per chart
	sendBufferSize = 64

	// MaxConnections is the connection count above which health is degraded
	MaxConnections = 500
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is read-only and serves its own page
		return true
	},
}

// NewHub creates a new WebSocket hub. messagesPerSecond limits the
// selection messages each client may send.
func NewHub(d Dispatcher, messagesPerSecond float64) *Hub {
	burst := int(messagesPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		dispatcher: d,
		limit:      rate.Limit(messagesPerSecond),
		burst:      burst,
		metrics:    metrics.Get(),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop. It returns when ctx is canceled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient registers a new client and sends the welcome message
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mutex.Unlock()

	h.metrics.IncrementWSConnection()

	h.logger.Info().
		Str("client_id", client.ID).
		Int("total_connections", total).
		Msg("WebSocket client registered")

	client.SendMessage(Message{
		Type: TypeConnection,
		Data: map[string]string{
			"status":    "connected",
			"client_id": client.ID,
		},
		Timestamp: time.Now(),
	})
}

// unregisterClient unregisters a client; repeated calls are no-ops
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	current, ok := h.clients[client.ID]
	if !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.ID)
	remaining := len(h.clients)
	h.mutex.Unlock()

	client.closeSend()
	h.metrics.DecrementWSConnection()

	h.logger.Info().
		Str("client_id", client.ID).
		Int("remaining_connections", remaining).
		Msg("WebSocket client unregistered")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mutex.Unlock()

	for _, client := range clients {
		client.closeSend()
		h.metrics.DecrementWSConnection()
	}

	h.logger.Info().
		Int("closed_connections", len(clients)).
		Msg("WebSocket hub stopped")
}

// SendToClient sends a message to a specific client. It reports whether the
// client was found.
func (h *Hub) SendToClient(clientID string, message interface{}) bool {
	h.mutex.RLock()
	client, exists := h.clients[clientID]
	h.mutex.RUnlock()

	if !exists {
		h.logger.Debug().
			Str("client_id", clientID).
			Msg("No WebSocket connection found for client")
		return false
	}

	client.SendMessage(message)
	return true
}

// GetConnectedClients returns the IDs of the connected clients, sorted
func (h *Hub) GetConnectedClients() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient is a public method to register a client (for testing)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient is a public method to unregister a client (for testing)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
