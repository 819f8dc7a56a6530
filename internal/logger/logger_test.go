package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestContextFieldsReachLogOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("debug", true, &buf)
	defer Init("info", true)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithClientID(ctx, "client-1")

	Get(ctx).Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}

	for key, want := range map[string]string{
		"request_id": "req-1",
		"trace_id":   "trace-1",
		"client_id":  "client-1",
		"service":    "sprint-dashboard",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}

	if GetRequestID(ctx) != "req-1" || GetTraceID(ctx) != "trace-1" || GetClientID(ctx) != "client-1" {
		t.Error("context getters returned unexpected values")
	}
}

func TestGetWithoutLoggerFallsBackToGlobal(t *testing.T) {
	if Get(context.Background()) != Global() {
		t.Error("Get should return the global logger when the context carries none")
	}
	//nolint:staticcheck // nil context is handled explicitly
	if Get(nil) != Global() {
		t.Error("Get(nil) should return the global logger")
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("GetRequestID should be empty without a request ID")
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("nonsense", true, &buf)
	defer Init("info", true)

	Global().Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message should be filtered at info level, got %q", buf.String())
	}
}

func TestAuditDatasetLoadFailure(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", true, &buf)
	defer Init("info", true)

	AuditDatasetLoad("DASHBOARD_DATA.csv", 0, 0, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{`"log_type":"audit"`, `"action":"DATASET_LOAD"`, `"success":false`, `"error":"boom"`, `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("audit output missing %s: %s", want, out)
		}
	}
}
