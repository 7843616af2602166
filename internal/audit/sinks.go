package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meshops/meshctl/internal/log"
)

// SlogSink writes audit events to a structured logger. This is the default
// sink: meshctl runs are usually interactive, and stderr is where operators
// look first.
type SlogSink struct {
	logger log.Logger
}

// NewSlogSink creates a sink writing to logger.
func NewSlogSink(logger log.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Log writes the event as one log record at a level matching its severity.
func (s *SlogSink) Log(ctx context.Context, e Event) error {
	level := slog.LevelInfo
	switch e.Severity {
	case SeverityDebug:
		level = slog.LevelDebug
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityCritical:
		level = slog.LevelError
	}

	attrs := []any{
		"security_event", e.EventType,
		"severity", string(e.Severity),
		"correlation_id", e.CorrelationID,
	}
	for k, v := range e.Details {
		attrs = append(attrs, k, v)
	}
	s.logger.Log(ctx, level, "audit event", attrs...)
	return nil
}

// MemorySink buffers events in memory. Test use only.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Log appends the event to the buffer.
func (s *MemorySink) Log(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of the buffered events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset clears the buffer.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
