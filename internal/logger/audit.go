package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionDatasetLoad     AuditAction = "DATASET_LOAD"
	AuditActionReportExport    AuditAction = "REPORT_EXPORT"
	AuditActionWSConnect       AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect    AuditAction = "WS_DISCONNECT"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action     AuditAction
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	ClientIP   string
	RequestID  string
	ClientID   string
	Success    bool
	Error      string
	Duration   int64 // Duration in milliseconds
}

// auditLogger is a specialized logger for audit events
var auditLogger = globalLogger.With().Str("log_type", "audit").Logger()

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit logs an audit event
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.ClientID == "" {
		event.ClientID = GetClientID(ctx)
	}

	var logEvent *zerolog.Event
	if event.Success {
		logEvent = auditLogger.Info()
	} else {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.RequestID != "" {
		logEvent.Str("request_id", event.RequestID)
	}

	if event.ClientID != "" {
		logEvent.Str("client_id", event.ClientID)
	}

	if event.ClientIP != "" {
		logEvent.Str("client_ip", event.ClientIP)
	}

	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}

	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}

	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditDatasetLoad logs the one-time dataset load at startup
func AuditDatasetLoad(path string, records, sprints int, err error) {
	event := AuditEvent{
		Action:     AuditActionDatasetLoad,
		Resource:   "dataset",
		ResourceID: path,
		Success:    err == nil,
		Details: map[string]interface{}{
			"records": records,
			"sprints": sprints,
		},
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(context.Background(), event)
}

// AuditExport logs a report download
func AuditExport(ctx context.Context, sprint, clientIP string, duration int64, err error) {
	event := AuditEvent{
		Action:     AuditActionReportExport,
		Resource:   "report",
		ResourceID: sprint,
		ClientIP:   clientIP,
		Duration:   duration,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditWebSocket logs WebSocket connection events
func AuditWebSocket(ctx context.Context, action AuditAction, clientID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:   action,
		Resource: "websocket",
		ClientID: clientID,
		ClientIP: clientIP,
		Success:  true,
		Details:  details,
	})
}
