package middleware

import (
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware registra contadores e latência por endpoint.
// m pode ser nil para usar as métricas globais.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		m = metrics.Get()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()

		m.IncrementRequests(statusCode < 400, latency)

		// Usa o padrão da rota para não criar uma entrada por parâmetro
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}
