package netguard

import (
	"errors"
	"fmt"
	"time"
)

// Code is the stable discriminant carried by every gateway error, for
// programmatic branching independent of message text.
type Code string

// Error codes.
const (
	// CodeSSRFViolation marks a request rejected before any network I/O:
	// dangerous scheme, private-IP literal, or internal-looking hostname.
	CodeSSRFViolation Code = "SSRF_VIOLATION"

	// CodeDNSRebindingViolation marks a request whose hostname resolved to a
	// private address. Rejected after DNS, before any connection.
	CodeDNSRebindingViolation Code = "DNS_REBINDING_VIOLATION"

	// CodeHeaderValidationFailed marks a request carrying a malformed or
	// injection-bearing header. Rejected before dispatch.
	CodeHeaderValidationFailed Code = "HEADER_VALIDATION_FAILED"

	// CodeResponseTooLarge marks a response exceeding the size cap.
	// Rejected after receipt; StatusCode preserves the original status.
	CodeResponseTooLarge Code = "RESPONSE_TOO_LARGE"

	// CodeTransportError wraps errors from the transport itself (connection
	// refused, native timeout, TLS failure). The underlying error is
	// preserved unmodified via Unwrap; the gateway never retries.
	CodeTransportError Code = "TRANSPORT_ERROR"
)

// Error is the gateway's error type. Security rejections always surface as
// *Error so callers can branch on Code rather than parse messages.
type Error struct {
	Code    Code
	Message string

	// StatusCode is the HTTP status of the offending response, when one was
	// received (RESPONSE_TOO_LARGE keeps the original status here).
	StatusCode int

	// CorrelationID and Duration tie the error back to logs and audit
	// events for the same logical operation.
	CorrelationID string
	Duration      time.Duration

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the gateway error code from err, unwrapping as needed.
// Returns "" for nil and for errors that did not originate here.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
