// Package audit records security decisions made by the outbound request
// gateway.
//
// The gateway reports every rejection (and, opt-in, every completed call) as
// an Event. Where those events go is a deployment concern: a Sink may write
// to the process log, append to a JSONL file, or buffer in memory for tests.
// Emission is best-effort — a broken sink must never turn a guarded HTTP
// call into a failure — but rejection events are flushed before the
// rejection is surfaced to the caller, so the audit trail always leads the
// caller-visible outcome.
package audit

import (
	"context"
	"time"
)

// Severity grades an audit event.
type Severity string

// Severity levels, lowest to highest.
const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event types emitted by the gateway.
const (
	EventSSRFViolation       = "ssrf_violation"
	EventDNSRebinding        = "dns_rebinding_violation"
	EventHeaderRejected      = "header_validation_failed"
	EventResponseTooLarge    = "response_too_large"
	EventRequestCompleted    = "http_request_completed"
	EventRequestFailed       = "http_request_failed"
	EventHealthCheckExecuted = "health_check_executed"
)

// Event is one security decision. Details values must already be masked by
// the producer; sinks write them verbatim.
type Event struct {
	EventType     string         `json:"event_type"`
	Severity      Severity       `json:"severity"`
	Details       map[string]any `json:"details,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// Sink receives audit events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Log(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event) error

// Log calls f.
func (f SinkFunc) Log(ctx context.Context, e Event) error { return f(ctx, e) }
