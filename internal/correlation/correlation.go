// Package correlation threads an opaque correlation ID through a logical
// operation. The ID travels on the context when one is available; commands
// that fan out multiple requests for one user action can also install a
// process-ambient ID so every log line and audit event of that action lines
// up.
package correlation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type ctxKey struct{}

var (
	ambientMu sync.RWMutex
	ambientID string
)

// NewID generates a fresh correlation ID.
func NewID() string {
	return uuid.New().String()
}

// WithID returns a context carrying the given correlation ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation ID carried by ctx, or "" if none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// SetAmbient installs a process-wide fallback correlation ID. Pass "" to
// clear it.
func SetAmbient(id string) {
	ambientMu.Lock()
	defer ambientMu.Unlock()
	ambientID = id
}

// Ambient returns the process-wide fallback correlation ID, or "".
func Ambient() string {
	ambientMu.RLock()
	defer ambientMu.RUnlock()
	return ambientID
}

// Resolve returns the first available correlation ID: the context's, then the
// ambient one, then a freshly generated ID.
func Resolve(ctx context.Context) string {
	if id := FromContext(ctx); id != "" {
		return id
	}
	if id := Ambient(); id != "" {
		return id
	}
	return NewID()
}
