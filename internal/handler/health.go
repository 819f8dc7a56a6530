package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Limite de heap usado nos health checks
const maxHeapMB = 512

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	ds        *dataset.Dataset
	wsHub     *websocket.Hub
	metrics   *metrics.Metrics
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. wsHub may be nil.
func NewHealthHandler(ds *dataset.Dataset, wsHub *websocket.Hub, m *metrics.Metrics, version string) *HealthHandler {
	if m == nil {
		m = metrics.Get()
	}
	return &HealthHandler{
		ds:        ds,
		wsHub:     wsHub,
		metrics:   m,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status: the dataset must be loaded
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"dataset": h.checkDataset(),
		"memory":  metrics.CheckMemoryHealth(maxHeapMB),
	}
	h.respond(c, components)
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"dataset": h.checkDataset(),
		"memory":  metrics.CheckMemoryHealth(maxHeapMB),
	}

	if h.wsHub != nil {
		components["websocket"] = metrics.CheckWebSocketHealth(h.wsHub.GetConnectionCount(), websocket.MaxConnections)
	}

	h.respond(c, components)
}

func (h *HealthHandler) checkDataset() metrics.HealthStatus {
	if h.ds == nil {
		return metrics.HealthStatus{
			Status:  metrics.StatusUnhealthy,
			Message: "dataset not loaded",
		}
	}
	return metrics.CheckDatasetHealth(h.ds.Len(), len(h.ds.Sprints()))
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == metrics.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := h.metrics.Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	exportSuccessRate := float64(0)
	totalExports := snapshot.Reports.Exported + snapshot.Reports.Errors
	if totalExports > 0 {
		exportSuccessRate = float64(snapshot.Reports.Exported) / float64(totalExports) * 100
	}

	summary := gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
		},
		"selection_changes": snapshot.SelectionChanges,
		"callbacks":         snapshot.Callbacks,
		"reports": gin.H{
			"exported":     snapshot.Reports.Exported,
			"success_rate": exportSuccessRate,
			"png_rendered": snapshot.Reports.PNG,
		},
		"websocket": gin.H{
			"connections":  snapshot.WebSocket.Connections,
			"rate_limited": snapshot.WebSocket.RateLimited,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	}

	c.JSON(http.StatusOK, summary)
}

// DebugMemory returns runtime memory statistics
// @Summary Memory statistics
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /debug/memory [get]
func (h *HealthHandler) DebugMemory(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"heap_alloc_mb":  m.HeapAlloc / 1024 / 1024,
		"heap_inuse_mb":  m.HeapInuse / 1024 / 1024,
		"heap_objects":   m.HeapObjects,
		"goroutines":     runtime.NumGoroutine(),
		"gc_runs":        m.NumGC,
		"gc_pause_total": m.PauseTotalNs / 1000000, // ms
	})
}
