package handler

import (
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers agrupa os handlers montados em NewRouter
type Handlers struct {
	Dashboard *DashboardHandler
	Export    *ExportHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
	Metrics   *metrics.Metrics
}

// NewRouter registra middlewares e rotas. As rotas de debug só existem no
// modo debug do Gin.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware(h.Metrics))

	r.GET("/", h.Dashboard.Index)

	// Health check e métricas (públicos)
	r.GET("/health", h.Health.DetailedHealthCheck)
	r.GET("/health/live", h.Health.LivenessCheck)
	r.GET("/health/ready", h.Health.ReadinessCheck)
	r.GET("/metrics", h.Health.GetMetrics)
	r.GET("/metrics/summary", h.Health.GetMetricsSummary)

	if gin.Mode() == gin.DebugMode {
		r.GET("/debug/memory", h.Health.DebugMemory)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/layout", h.Dashboard.Layout)
		api.POST("/callbacks", h.Dashboard.Callback)
		api.GET("/figures/:output", h.Dashboard.Figure)
		api.GET("/figures/:output/png", h.Dashboard.FigurePNG)
		api.GET("/export", h.Export.Export)
		api.GET("/ws/stats", h.WebSocket.GetConnectionStats)
	}

	r.GET("/ws", h.WebSocket.HandleConnection)

	return r
}
