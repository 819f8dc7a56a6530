package metrics

import (
	"runtime"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatasetHealth reports whether the dataset was loaded with selectable sprints
func CheckDatasetHealth(records, sprints int) HealthStatus {
	if sprints == 0 {
		return HealthStatus{
			Status:  StatusUnhealthy,
			Message: "dataset has no sprints",
		}
	}
	if records == 0 {
		return HealthStatus{
			Status:  StatusDegraded,
			Message: "dataset is empty",
		}
	}
	return HealthStatus{Status: StatusHealthy}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  StatusUnhealthy,
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  StatusDegraded,
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{Status: StatusHealthy}
}

// CheckWebSocketHealth flags an unusual number of open connections
func CheckWebSocketHealth(connections, limit int) HealthStatus {
	if connections > limit {
		return HealthStatus{
			Status:  StatusDegraded,
			Message: "WebSocket connections near limit",
		}
	}
	return HealthStatus{Status: StatusHealthy}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}
