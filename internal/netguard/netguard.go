package netguard

import "time"

// Gateway constants. These are deliberate hard bounds, not tunables: callers
// adjust behavior per call through request options, and the options clamp
// back into these ranges.
const (
	// DefaultTimeout applies when a request sets no timeout.
	DefaultTimeout = 30 * time.Second

	// MinTimeout and MaxTimeout bound the caller-requested timeout. Values
	// outside the range are clamped, bounding worst-case resource hold time
	// regardless of input.
	MinTimeout = 1 * time.Second
	MaxTimeout = 60 * time.Second

	// MaxResponseSize caps response bodies (declared and actual).
	MaxResponseSize = 10 * 1024 * 1024

	// MaxRedirects caps redirect chains; every hop is re-validated.
	MaxRedirects = 5

	// DNSLookupTimeout bounds the rebinding-check lookup. Resolution slower
	// than this fails closed.
	DNSLookupTimeout = 5 * time.Second

	// DefaultUserAgent identifies meshctl to endpoints unless Options
	// overrides it.
	DefaultUserAgent = "meshctl/1.0"

	// CorrelationHeader carries the correlation ID to the endpoint.
	CorrelationHeader = "X-Correlation-ID"

	// lifecycleGrace is added on top of the clamped timeout when arming the
	// lifecycle token, so the transport's native timeout fires first under
	// normal conditions and the token stays a backstop.
	lifecycleGrace = 500 * time.Millisecond

	// maxHeaderLogLength caps header values in the log-safe sanitized copy.
	maxHeaderLogLength = 8192
)

// requestOptions collects per-call option state.
type requestOptions struct {
	allowPrivateIPs bool
	audit           bool
	timeout         time.Duration
	headers         map[string]string
	body            []byte
}

// RequestOption adjusts a single call. Relaxed behavior is opt-in and
// visible at the call site, never a hidden global.
type RequestOption func(*requestOptions)

// AllowPrivateIPs permits private/internal targets for this one call.
// Dangerous schemes (data:, file:, javascript:) stay blocked regardless.
func AllowPrivateIPs() RequestOption {
	return func(o *requestOptions) { o.allowPrivateIPs = true }
}

// WithAudit emits an audit event for this call's completion or failure.
// Security rejections are audited whether or not this option is set.
func WithAudit() RequestOption {
	return func(o *requestOptions) { o.audit = true }
}

// WithTimeout sets this call's timeout. Clamped to [MinTimeout, MaxTimeout].
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithHeaders sets request headers. Names must match [A-Za-z0-9_-]+ and
// values must be CR/LF-free or the call is rejected.
func WithHeaders(h map[string]string) RequestOption {
	return func(o *requestOptions) { o.headers = h }
}

// WithBody sets the request body.
func WithBody(b []byte) RequestOption {
	return func(o *requestOptions) { o.body = b }
}

func applyOptions(opts []RequestOption) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clampTimeout bounds d to [MinTimeout, MaxTimeout]; zero and negative
// values select DefaultTimeout.
func clampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	if d < MinTimeout {
		return MinTimeout
	}
	if d > MaxTimeout {
		return MaxTimeout
	}
	return d
}
