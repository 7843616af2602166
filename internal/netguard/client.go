package netguard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/meshops/meshctl/internal/audit"
	"github.com/meshops/meshctl/internal/correlation"
	"github.com/meshops/meshctl/internal/log"
	"github.com/meshops/meshctl/internal/redact"
)

// Options configures a Client. The zero value works: it yields a guarded
// client with default bounds, a nop-equivalent auditor and the default
// resolver. Tests construct independent instances instead of sharing a
// package-level singleton.
type Options struct {
	// Logger receives security warnings. Required in production; nil
	// silently discards.
	Logger log.Logger

	// Auditor receives security events. nil disables auditing entirely
	// (rejections still fail the call).
	Auditor *audit.Emitter

	// Resolver overrides DNS lookups for the rebinding check. nil uses
	// net.DefaultResolver.
	Resolver Resolver

	// Timeout is the default per-call timeout. Clamped to
	// [MinTimeout, MaxTimeout]; zero selects DefaultTimeout.
	Timeout time.Duration

	// MaxResponseSize caps response bodies. Zero selects MaxResponseSize.
	MaxResponseSize int64

	// MaxRedirects caps redirect chains. Zero selects MaxRedirects.
	MaxRedirects int

	// UserAgent overrides the User-Agent header. Empty selects
	// DefaultUserAgent.
	UserAgent string
}

// Client is the secure outbound HTTP client. All verb methods funnel through
// the same ordered, short-circuiting pipeline:
//
//	stamp start + correlation ID -> arm lifecycle token -> URL validation ->
//	DNS rebinding check (domain hosts) -> header sanitation -> standard
//	headers -> dispatch -> response size governance -> audit -> result.
//
// A Client is safe for concurrent use; per-request state lives on the stack
// and the only shared data is immutable.
type Client struct {
	logger   log.Logger
	auditor  *audit.Emitter
	resolver Resolver

	timeout         time.Duration
	maxResponseSize int64
	maxRedirects    int
	userAgent       string

	// guarded dials through the classifying dialer; open is used only for
	// AllowPrivateIPs calls. Both cap and re-validate redirects.
	guarded *http.Client
	open    *http.Client
}

// New creates a Client. The composition root owns the instance and passes it
// to whatever needs outbound HTTP; there is no hidden module-level default.
func New(opts Options) *Client {
	c := &Client{
		logger:          opts.Logger,
		auditor:         opts.Auditor,
		resolver:        opts.Resolver,
		timeout:         clampTimeout(opts.Timeout),
		maxResponseSize: opts.MaxResponseSize,
		maxRedirects:    opts.MaxRedirects,
		userAgent:       opts.UserAgent,
	}
	if c.maxResponseSize <= 0 {
		c.maxResponseSize = MaxResponseSize
	}
	if c.maxRedirects <= 0 {
		c.maxRedirects = MaxRedirects
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}

	c.guarded = &http.Client{
		Transport:     newGuardedTransport(),
		CheckRedirect: checkRedirect(c.maxRedirects, false),
	}
	c.open = &http.Client{
		Transport:     newOpenTransport(),
		CheckRedirect: checkRedirect(c.maxRedirects, true),
	}
	return c
}

// CloseIdleConnections drops pooled connections on both transports. Tests
// and short-lived commands call it so nothing outlives the work.
func (c *Client) CloseIdleConnections() {
	c.guarded.CloseIdleConnections()
	c.open.CloseIdleConnections()
}

// Response is a completed, size-governed HTTP exchange.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte

	// Duration and CorrelationID tie the response back to logs and audit
	// events for the same logical operation.
	Duration      time.Duration
	CorrelationID string
}

// Get issues a guarded GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, opts...)
}

// Post issues a guarded POST request.
func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, opts...)
}

// Put issues a guarded PUT request.
func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, opts...)
}

// Patch issues a guarded PATCH request.
func (c *Client) Patch(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, url, opts...)
}

// Delete issues a guarded DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, url, opts...)
}

// Do runs one request through the full validation pipeline and dispatches
// it. Every rejection and transport failure comes back as *Error with a
// stable Code plus correlation and timing metadata.
func (c *Client) Do(ctx context.Context, method, rawURL string, opts ...RequestOption) (*Response, error) {
	o := applyOptions(opts)
	start := time.Now()
	corrID := correlation.Resolve(ctx)

	timeout := c.timeout
	if o.timeout > 0 {
		timeout = clampTimeout(o.timeout)
	}

	token := newLifecycleToken(ctx, timeout)
	defer token.Cleanup()

	if err := ValidateURL(rawURL, o.allowPrivateIPs); err != nil {
		c.warn("outbound request blocked", rawURL, corrID, err)
		c.auditReject(ctx, audit.EventSSRFViolation, audit.SeverityWarning, corrID, map[string]any{
			"url":    redact.MaskSensitiveData(rawURL),
			"reason": err.Error(),
		})
		return nil, c.finish(err, corrID, start)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		// ValidateURL already parsed this URL; reaching here means it
		// changed between calls, which cannot happen with a string.
		return nil, c.finish(&Error{Code: CodeSSRFViolation, Message: "unparsable URL", Err: err}, corrID, start)
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		dns, err := ValidateDNSRebinding(token.Context(), c.resolver, host, o.allowPrivateIPs)
		if err != nil {
			c.warn("DNS rebinding check failed", rawURL, corrID, err)
			c.auditReject(ctx, audit.EventDNSRebinding, audit.SeverityCritical, corrID, map[string]any{
				"url":         redact.MaskSensitiveData(rawURL),
				"hostname":    host,
				"resolved_ip": dns.ResolvedIP,
				"reason":      err.Error(),
			})
			return nil, c.finish(err, corrID, start)
		}
	}

	sanitized, err := SanitizeHeaders(o.headers)
	if err != nil {
		c.warn("header validation failed", rawURL, corrID, err)
		c.auditReject(ctx, audit.EventHeaderRejected, audit.SeverityWarning, corrID, map[string]any{
			"url":    redact.MaskSensitiveData(rawURL),
			"reason": err.Error(),
		})
		return nil, c.finish(err, corrID, start)
	}

	var bodyReader io.Reader
	if o.body != nil {
		bodyReader = bytes.NewReader(o.body)
	}

	// The lifecycle token (timeout+grace) backstops this native deadline.
	reqCtx, cancel := context.WithTimeout(token.Context(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, bodyReader)
	if err != nil {
		return nil, c.finish(&Error{Code: CodeTransportError, Message: "building request", Err: err}, corrID, start)
	}
	// Transmit the validated originals; the sanitized copies are log-only.
	for name, value := range o.headers {
		req.Header.Set(name, value)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(CorrelationHeader, corrID)

	httpClient := c.guarded
	if o.allowPrivateIPs {
		httpClient = c.open
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		token.Cleanup()
		werr := c.finish(&Error{Code: CodeTransportError, Message: method + " " + u.Host, Err: err}, corrID, start)
		if o.audit {
			c.auditOutcome(ctx, audit.EventRequestFailed, corrID, map[string]any{
				"url":         redact.MaskSensitiveData(rawURL),
				"method":      method,
				"error":       redact.MaskSensitiveData(err.Error()),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}
		return nil, werr
	}
	defer func() { _ = resp.Body.Close() }()
	token.Cleanup()

	if err := checkDeclaredSize(resp, c.maxResponseSize); err != nil {
		c.auditReject(ctx, audit.EventResponseTooLarge, audit.SeverityWarning, corrID, map[string]any{
			"url":            redact.MaskSensitiveData(rawURL),
			"status":         resp.StatusCode,
			"content_length": resp.ContentLength,
		})
		return nil, c.finish(err, corrID, start)
	}

	body, err := readBodyCapped(resp, c.maxResponseSize)
	if err != nil {
		if CodeOf(err) == CodeResponseTooLarge {
			c.auditReject(ctx, audit.EventResponseTooLarge, audit.SeverityWarning, corrID, map[string]any{
				"url":    redact.MaskSensitiveData(rawURL),
				"status": resp.StatusCode,
			})
		}
		return nil, c.finish(err, corrID, start)
	}

	duration := time.Since(start)
	if o.audit {
		c.auditOutcome(ctx, audit.EventRequestCompleted, corrID, map[string]any{
			"url":         redact.MaskSensitiveData(rawURL),
			"method":      method,
			"status":      resp.StatusCode,
			"body_bytes":  len(body),
			"headers":     sanitized,
			"duration_ms": duration.Milliseconds(),
		})
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Headers:       resp.Header.Clone(),
		Body:          body,
		Duration:      duration,
		CorrelationID: corrID,
	}, nil
}

// HealthStatus is the result of a health probe. Err carries the gateway
// error code (or message) when the probe failed outright.
type HealthStatus struct {
	Healthy      bool
	Status       int
	ResponseTime time.Duration
	Err          string
}

// HealthCheck issues a bounded GET and never returns an error: total
// failure yields {Healthy: false, Status: 0, Err: <code>}. Used by
// availability probes, which want a report rather than a fault. Every probe
// emits a health_check_executed audit event with its verdict.
func (c *Client) HealthCheck(ctx context.Context, url string, opts ...RequestOption) HealthStatus {
	start := time.Now()
	corrID := correlation.Resolve(ctx)
	resp, err := c.Get(ctx, url, opts...)
	status := HealthStatus{ResponseTime: time.Since(start)}

	if err != nil {
		if code := CodeOf(err); code != "" {
			status.Err = string(code)
		} else {
			status.Err = err.Error()
		}
		var ge *Error
		if errors.As(err, &ge) {
			status.Status = ge.StatusCode
		}
	} else {
		status.Status = resp.StatusCode
		status.Healthy = resp.StatusCode >= 200 && resp.StatusCode < 400
	}

	c.auditor.Emit(ctx, audit.Event{
		EventType:     audit.EventHealthCheckExecuted,
		Severity:      audit.SeverityInfo,
		CorrelationID: corrID,
		Details: map[string]any{
			"url":              redact.MaskSensitiveData(url),
			"healthy":          status.Healthy,
			"status":           status.Status,
			"error":            status.Err,
			"response_time_ms": status.ResponseTime.Milliseconds(),
		},
	})
	return status
}

// finish attaches correlation and timing metadata to an outgoing error.
func (c *Client) finish(err error, corrID string, start time.Time) error {
	var ge *Error
	if errors.As(err, &ge) {
		ge.CorrelationID = corrID
		ge.Duration = time.Since(start)
		return err
	}
	return &Error{
		Code:          CodeTransportError,
		Message:       "request failed",
		CorrelationID: corrID,
		Duration:      time.Since(start),
		Err:           err,
	}
}

// auditReject emits a security rejection event. The emit completes before
// the rejection is surfaced to the caller.
func (c *Client) auditReject(ctx context.Context, eventType string, severity audit.Severity, corrID string, details map[string]any) {
	c.auditor.Emit(ctx, audit.Event{
		EventType:     eventType,
		Severity:      severity,
		Details:       details,
		CorrelationID: corrID,
	})
}

// auditOutcome emits an opt-in routine event at debug severity.
func (c *Client) auditOutcome(ctx context.Context, eventType, corrID string, details map[string]any) {
	c.auditor.Emit(ctx, audit.Event{
		EventType:     eventType,
		Severity:      audit.SeverityDebug,
		Details:       details,
		CorrelationID: corrID,
	})
}

func (c *Client) warn(msg, rawURL, corrID string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg,
		"url", redact.MaskSensitiveData(rawURL),
		"correlation_id", corrID,
		"security_event", string(CodeOf(err)),
		"error", err)
}
