package audit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/meshops/meshctl/internal/log"
)

// debugEventRate bounds routine (debug-severity) event emission. Security
// severities are never rate limited: dropping the record of a rejected attack
// would defeat the point of auditing.
const (
	debugEventsPerSecond = 50
	debugEventBurst      = 100
)

// Emitter fans events into a Sink, applying severity defaults, timestamps
// and flood control. The zero value is not usable; construct with NewEmitter.
type Emitter struct {
	sink    Sink
	logger  log.Logger
	limiter *rate.Limiter
}

// NewEmitter creates an Emitter writing to sink. A nil sink yields an emitter
// that drops everything, which keeps call sites free of nil checks.
func NewEmitter(sink Sink, logger log.Logger) *Emitter {
	return &Emitter{
		sink:    sink,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(debugEventsPerSecond), debugEventBurst),
	}
}

// Emit records one event. It is best-effort: sink failures are logged and
// swallowed so a broken audit pipeline cannot fail the guarded call. The
// call blocks until the sink returns, which gives rejection paths their
// audit-before-respond guarantee.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil || e.sink == nil {
		return
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Severity == "" {
		ev.Severity = SeverityInfo
	}

	// Flood control applies to routine traffic only.
	if ev.Severity == SeverityDebug && !e.limiter.Allow() {
		return
	}

	if err := e.sink.Log(ctx, ev); err != nil && e.logger != nil {
		e.logger.Warn("audit sink write failed",
			"event_type", ev.EventType,
			"severity", ev.Severity,
			"error", err)
	}
}
