// Package integration exercises the dashboard end to end: the real data
// file, the HTTP routes and the WebSocket channel on a live test server.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/binding"
	"github.com/cleberrangel/sprint-dashboard/internal/cache"
	"github.com/cleberrangel/sprint-dashboard/internal/config"
	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/handler"
	"github.com/cleberrangel/sprint-dashboard/internal/layout"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/service"
	"github.com/cleberrangel/sprint-dashboard/internal/transform"
	"github.com/cleberrangel/sprint-dashboard/internal/websocket"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContext holds all dependencies for integration tests
type TestContext struct {
	Dataset *dataset.Dataset
	Hub     *websocket.Hub
	Metrics *metrics.Metrics
	Server  *httptest.Server
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setupTestContext(t *testing.T) *TestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := dataset.Load(filepath.Join("..", "..", config.DataFile))
	require.NoError(t, err)

	root, err := layout.Default(ds.Sprints())
	require.NoError(t, err)

	m := metrics.New()
	figureCache := cache.NewCache(time.Minute)
	opts := transform.EfficiencyOptions{}
	binder := binding.NewDashboard(ds, figureCache, m, opts)

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(binder, 100)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	dashboard, err := handler.NewDashboardHandler(ds, root, binder, m)
	require.NoError(t, err)

	router := handler.NewRouter(handler.Handlers{
		Dashboard: dashboard,
		Export:    handler.NewExportHandler(ds, service.NewExportService(ds, opts), m),
		Health:    handler.NewHealthHandler(ds, hub, m, "integration"),
		WebSocket: handler.NewWebSocketHandler(hub),
		Metrics:   m,
	})
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		cancel()
		<-hubDone
		server.Close()
		figureCache.Stop()
	})

	return &TestContext{Dataset: ds, Hub: hub, Metrics: m, Server: server}
}

func (tc *TestContext) dial(t *testing.T) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(tc.Server.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readWS(t, conn)
	require.Equal(t, "connection", msg.Type)
	return conn
}

func readWS(t *testing.T, conn *gorilla.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func selectSprint(t *testing.T, conn *gorilla.Conn, sprint string) []binding.Update {
	t.Helper()
	updates, err := trySelect(conn, sprint)
	require.NoError(t, err)
	return updates
}

// trySelect envia uma seleção e lê as três figuras; seguro fora da goroutine do teste
func trySelect(conn *gorilla.Conn, sprint string) ([]binding.Update, error) {
	err := conn.WriteJSON(map[string]interface{}{
		"type": "select",
		"data": map[string]string{"input": layout.SelectorID, "value": sprint},
	})
	if err != nil {
		return nil, err
	}

	updates := make([]binding.Update, 0, 3)
	for i := 0; i < 3; i++ {
		if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return nil, err
		}
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, err
		}
		if msg.Type != "figure" {
			return nil, fmt.Errorf("unexpected message %s: %s", msg.Type, msg.Data)
		}
		var u binding.Update
		if err := json.Unmarshal(msg.Data, &u); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func TestDataFileLoads(t *testing.T) {
	tc := setupTestContext(t)

	assert.Equal(t, []string{"Sprint 1", "Sprint 2", "Sprint 3"}, tc.Dataset.Sprints())
	assert.Equal(t, "Sprint 1", tc.Dataset.DefaultSprint())
}

func TestWebSocketSelectionFlow(t *testing.T) {
	tc := setupTestContext(t)
	conn := tc.dial(t)

	updates := selectSprint(t, conn, "Sprint 2")

	outputs := []string{updates[0].Output, updates[1].Output, updates[2].Output}
	assert.Equal(t, []string{layout.TimelineID, layout.PerformanceID, layout.EfficiencyID}, outputs)
	// Search não tem ActualFinished
	assert.Equal(t, 3, updates[0].Figure.Points())
	// Bruno, Diego, Carla e Ana (custo nulo conta como zero)
	assert.Equal(t, 4, updates[1].Figure.Points())

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", readWS(t, conn).Type)
}

func TestWebSocketAndHTTPAgree(t *testing.T) {
	tc := setupTestContext(t)
	conn := tc.dial(t)

	fromWS := selectSprint(t, conn, "Sprint 3")

	body := []byte(fmt.Sprintf(`{"input":%q,"value":"Sprint 3"}`, layout.SelectorID))
	resp, err := http.Post(tc.Server.URL+"/api/v1/callbacks", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fromHTTP struct {
		Data []binding.Update `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fromHTTP))
	assert.Equal(t, fromWS, fromHTTP.Data)

	// A segunda consulta vem do cache
	snap := tc.Metrics.Snapshot()
	assert.Greater(t, snap.Callbacks[layout.TimelineID].CacheHitRate, float64(0))
}

func TestWebSocketUnknownInput(t *testing.T) {
	tc := setupTestContext(t)
	conn := tc.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "select",
		"data": map[string]string{"input": "nope", "value": "Sprint 1"},
	}))

	msg := readWS(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, string(msg.Data), "UNKNOWN_INPUT")

	// A conexão continua utilizável depois do erro
	assert.Len(t, selectSprint(t, conn, "Sprint 1"), 3)
}

func TestConcurrentClients(t *testing.T) {
	tc := setupTestContext(t)

	const clients = 8
	conns := make([]*gorilla.Conn, clients)
	for i := range conns {
		conns[i] = tc.dial(t)
	}

	require.Eventually(t, func() bool {
		return tc.Hub.GetConnectionCount() == clients
	}, 2*time.Second, 10*time.Millisecond)

	sprints := tc.Dataset.Sprints()
	results := make([][]binding.Update, clients)
	errs := make([]error, clients)

	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn *gorilla.Conn) {
			defer wg.Done()
			results[i], errs[i] = trySelect(conn, sprints[i%len(sprints)])
		}(i, conn)
	}
	wg.Wait()

	for i, updates := range results {
		require.NoError(t, errs[i])
		require.Len(t, updates, 3)
		for _, u := range updates {
			assert.Equal(t, sprints[i%len(sprints)], u.Value)
			assert.Empty(t, u.Error)
		}
	}

	// Clientes com o mesmo Sprint recebem as mesmas figuras
	assert.Equal(t, results[0], results[len(sprints)])
}

func TestClientDisconnectUnregisters(t *testing.T) {
	tc := setupTestContext(t)
	conn := tc.dial(t)

	require.Eventually(t, func() bool { return tc.Hub.GetConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool { return tc.Hub.GetConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestExportAndHealthOverHTTP(t *testing.T) {
	tc := setupTestContext(t)

	resp, err := http.Get(tc.Server.URL + "/api/v1/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="sprint-Sprint 1-report.xlsx"`, resp.Header.Get("Content-Disposition"))

	health, err := http.Get(tc.Server.URL + "/health/ready")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
