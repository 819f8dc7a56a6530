package handler

import (
	"net/http"

	"github.com/cleberrangel/sprint-dashboard/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleConnection handles WebSocket connection upgrades
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetConnectionStats returns WebSocket connection statistics
// @Summary WebSocket connection statistics
// @Tags websocket
// @Produce json
// @Success 200 {object} model.Response
// @Router /api/v1/ws/stats [get]
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_connections": h.hub.GetConnectionCount(),
			"connected_clients": h.hub.GetConnectedClients(),
		},
	})
}
