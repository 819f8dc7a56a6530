package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// CallbackMetrics tracks recomputations of a single chart
type CallbackMetrics struct {
	Invocations  int64
	Errors       int64
	CacheHits    int64
	TotalLatency int64 // microseconds
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Selector change events (one per Dispatch)
	SelectionChanges int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64
	WSRateLimited int64

	// Report export metrics
	ReportsExported int64
	ExportErrors    int64
	PNGRendered     int64

	// Per-chart callback metrics
	Callbacks map[string]*CallbackMetrics

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New creates an isolated metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		Callbacks:       make(map[string]*CallbackMetrics),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementSelectionChange counts a selector change event
func (m *Metrics) IncrementSelectionChange() {
	atomic.AddInt64(&m.SelectionChanges, 1)
}

// TrackCallback records one recomputation of a chart
func (m *Metrics) TrackCallback(output string, cacheHit bool, err error, latency time.Duration) {
	m.mu.Lock()
	cm, exists := m.Callbacks[output]
	if !exists {
		cm = &CallbackMetrics{}
		m.Callbacks[output] = cm
	}
	m.mu.Unlock()

	atomic.AddInt64(&cm.Invocations, 1)
	atomic.AddInt64(&cm.TotalLatency, latency.Microseconds())
	if cacheHit {
		atomic.AddInt64(&cm.CacheHits, 1)
	}
	if err != nil {
		atomic.AddInt64(&cm.Errors, 1)
	}
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments WebSocket incoming message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// IncrementWSRateLimited counts a dropped client message
func (m *Metrics) IncrementWSRateLimited() {
	atomic.AddInt64(&m.WSRateLimited, 1)
}

// IncrementReportExported increments report export counters
func (m *Metrics) IncrementReportExported(success bool) {
	if success {
		atomic.AddInt64(&m.ReportsExported, 1)
	} else {
		atomic.AddInt64(&m.ExportErrors, 1)
	}
}

// IncrementPNGRendered counts a rendered chart snapshot
func (m *Metrics) IncrementPNGRendered() {
	atomic.AddInt64(&m.PNGRendered, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}
	m.mu.Unlock()

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// CallbackMetricsSnapshot represents chart callback metrics in a snapshot
type CallbackMetricsSnapshot struct {
	Invocations  int64   `json:"invocations"`
	Errors       int64   `json:"errors"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	SelectionChanges int64 `json:"selection_changes"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
		RateLimited int64 `json:"rate_limited"`
	} `json:"websocket"`

	Reports struct {
		Exported int64 `json:"exported"`
		Errors   int64 `json:"errors"`
		PNG      int64 `json:"png_rendered"`
	} `json:"reports"`

	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	Callbacks map[string]CallbackMetricsSnapshot `json:"callbacks,omitempty"`
	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	snapshot.SelectionChanges = atomic.LoadInt64(&m.SelectionChanges)

	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)
	snapshot.WebSocket.RateLimited = atomic.LoadInt64(&m.WSRateLimited)

	snapshot.Reports.Exported = atomic.LoadInt64(&m.ReportsExported)
	snapshot.Reports.Errors = atomic.LoadInt64(&m.ExportErrors)
	snapshot.Reports.PNG = atomic.LoadInt64(&m.PNGRendered)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.Callbacks) > 0 {
		snapshot.Callbacks = make(map[string]CallbackMetricsSnapshot, len(m.Callbacks))
		for k, v := range m.Callbacks {
			inv := atomic.LoadInt64(&v.Invocations)
			cs := CallbackMetricsSnapshot{
				Invocations: inv,
				Errors:      atomic.LoadInt64(&v.Errors),
			}
			if inv > 0 {
				cs.CacheHitRate = float64(atomic.LoadInt64(&v.CacheHits)) / float64(inv) * 100
				cs.AvgLatencyMs = float64(atomic.LoadInt64(&v.TotalLatency)) / float64(inv) / 1000
			}
			snapshot.Callbacks[k] = cs
		}
	}

	if len(m.EndpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot, len(m.EndpointMetrics))
		for k, v := range m.EndpointMetrics {
			req := atomic.LoadInt64(&v.Requests)
			errs := atomic.LoadInt64(&v.Errors)
			em := EndpointMetricsSnapshot{Requests: req, Errors: errs}
			if req > 0 {
				em.ErrorRate = float64(errs) / float64(req) * 100
				em.AvgLatencyMs = float64(atomic.LoadInt64(&v.TotalLatency)) / float64(req)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}
