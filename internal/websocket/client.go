package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/binding"
	"github.com/cleberrangel/sprint-dashboard/internal/layout"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/middleware"
	"github.com/cleberrangel/sprint-dashboard/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// Connection identification
	ID         string
	RemoteAddr string

	// Hub reference
	Hub *Hub

	limiter *rate.Limiter

	// Current Sprint chosen by this page
	selection *binding.Selector

	// Guards Send against writes after close
	sendMu sync.Mutex
	closed bool

	ConnectedAt time.Time
}

// NewClient creates a client bound to the hub. conn may be nil in tests.
func NewClient(h *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		conn:        conn,
		Send:        make(chan []byte, sendBufferSize),
		ID:          uuid.New().String(),
		RemoteAddr:  remoteAddr,
		Hub:         h,
		limiter:     rate.NewLimiter(h.limit, h.burst),
		selection:   binding.NewSelector(""),
		ConnectedAt: time.Now(),
	}
}

// ServeWS handles websocket requests from the peer
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromGin(c).Error().
			Err(err).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(h, conn, c.ClientIP())

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	ctx := logger.WithClientID(context.Background(), client.ID)
	logger.AuditWebSocket(ctx, logger.AuditActionWSConnect, client.ID, client.RemoteAddr, nil)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.writePump()
	go client.readPump(ctx)
}

// readPump pumps messages from the websocket connection to the binder
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.conn.Close()
		logger.AuditWebSocket(ctx, logger.AuditActionWSDisconnect, c.ID, c.RemoteAddr, map[string]interface{}{
			"duration_ms": time.Since(c.ConnectedAt).Milliseconds(),
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Get(ctx).Error().
					Err(err).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		c.Hub.metrics.IncrementWSMessageIn()
		c.handleMessage(ctx, message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine. Each message goes out in its
// own frame so the browser can parse frames independently.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
			c.Hub.metrics.IncrementWSMessageOut()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	log := logger.Get(ctx)

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Msg("Failed to unmarshal client message")
		c.sendError("INVALID_MESSAGE", "Mensagem inválida", "")
		return
	}

	switch msg.Type {
	case TypePing:
		c.SendMessage(Message{Type: TypePong, Timestamp: time.Now()})

	case TypeSelect:
		c.handleSelect(ctx, msg.Data)

	case TypeRefresh:
		c.handleRefresh(ctx)

	default:
		log.Debug().
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
		c.sendError("UNKNOWN_TYPE", "Tipo de mensagem desconhecido", "")
	}
}

// handleSelect applies a new selector value
func (c *Client) handleSelect(ctx context.Context, raw json.RawMessage) {
	if !c.limiter.Allow() {
		c.Hub.metrics.IncrementWSRateLimited()
		c.sendError("RATE_LIMITED", model.ErrRateLimited.Error(), "")
		return
	}

	var req SelectRequest
	if len(raw) == 0 || json.Unmarshal(raw, &req) != nil {
		c.sendError("INVALID_MESSAGE", "Seleção inválida", "")
		return
	}

	input := middleware.SanitizeSelection(req.Input)
	value := middleware.SanitizeSelection(req.Value)

	if c.dispatch(ctx, input, value) {
		changed := c.selection.Set(value)
		logger.Get(ctx).Debug().
			Str("input", input).
			Str("value", value).
			Bool("changed", changed).
			Msg("Seleção aplicada")
	}
}

// handleRefresh recomputes the charts for the current selection
func (c *Client) handleRefresh(ctx context.Context) {
	if !c.limiter.Allow() {
		c.Hub.metrics.IncrementWSRateLimited()
		c.sendError("RATE_LIMITED", model.ErrRateLimited.Error(), "")
		return
	}

	value, ok := c.selection.Current()
	if !ok {
		c.sendError("NO_SELECTION", "Nenhuma Sprint selecionada", "")
		return
	}
	c.dispatch(ctx, layout.SelectorID, value)
}

// dispatch runs the bindings and sends one figure message per chart, in
// registration order. It reports whether the input was accepted.
func (c *Client) dispatch(ctx context.Context, input, value string) bool {
	updates, err := c.Hub.dispatcher.Dispatch(ctx, input, value)
	if err != nil {
		code := "DISPATCH_FAILED"
		if errors.Is(err, model.ErrUnknownInput) {
			code = "UNKNOWN_INPUT"
		}
		logger.Get(ctx).Warn().
			Err(err).
			Str("input", input).
			Msg("Seleção rejeitada")
		c.sendError(code, err.Error(), "")
		return false
	}

	for _, u := range updates {
		if u.Error != "" {
			c.sendError("CALLBACK_FAILED", u.Error, u.Output)
			continue
		}
		c.SendMessage(Message{Type: TypeFigure, Data: u, Timestamp: time.Now()})
	}
	return true
}

func (c *Client) sendError(code, message, output string) {
	c.SendMessage(Message{
		Type:      TypeError,
		Data:      ErrorPayload{Code: code, Message: message, Output: output},
		Timestamp: time.Now(),
	})
}

// SendMessage queues a message for this client. Messages are dropped when
// the queue is full or the client is closed.
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("client_id", c.ID).
			Msg("Failed to marshal message for client")
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn().
			Str("client_id", c.ID).
			Msg("Client send channel is full, dropping message")
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
