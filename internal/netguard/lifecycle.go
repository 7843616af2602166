package netguard

import (
	"context"
	"sync"
	"time"
)

// lifecycleToken bounds one in-flight request. It derives a context that is
// cancelled at the clamped timeout plus a fixed grace, so the transport's
// own deadline fires first under normal conditions and the token acts as a
// backstop. Exactly one token is armed per request and destroyed exactly
// once, on whichever exit path runs first.
type lifecycleToken struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// newLifecycleToken arms a token for one request. timeout must already be
// clamped by the caller.
func newLifecycleToken(parent context.Context, timeout time.Duration) *lifecycleToken {
	ctx, cancel := context.WithTimeout(parent, timeout+lifecycleGrace)
	return &lifecycleToken{ctx: ctx, cancel: cancel}
}

// Context returns the bounded context for the request.
func (t *lifecycleToken) Context() context.Context {
	return t.ctx
}

// Cleanup releases the token's timer. Idempotent: every exit path
// (validation rejection, transport success, transport error) calls it, and
// calling it again is a safe no-op.
func (t *lifecycleToken) Cleanup() {
	t.once.Do(t.cancel)
}
