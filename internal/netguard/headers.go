package netguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meshops/meshctl/internal/redact"
)

// headerNamePattern is the allowlist for header names. Stricter than RFC
// 7230 token on purpose: nothing this CLI sends needs the exotic characters,
// and the narrow set rules out smuggling tricks wholesale.
var headerNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SanitizeHeaders validates a header map and produces a log-safe copy.
//
// Validation rejects (no partial success):
//   - names not matching [A-Za-z0-9_-]+
//   - values containing CR or LF (header/response splitting)
//
// Sanitization is log-only: the transmitted values are the validated
// originals, while the returned map carries masked, length-capped copies for
// audit and log payloads. An over-cap value is therefore truncated in the
// audit trail, never on the wire.
func SanitizeHeaders(headers map[string]string) (map[string]string, error) {
	sanitized := make(map[string]string, len(headers))
	if len(headers) == 0 {
		return sanitized, nil
	}

	for name, value := range headers {
		if !headerNamePattern.MatchString(name) {
			return nil, &Error{
				Code:    CodeHeaderValidationFailed,
				Message: fmt.Sprintf("invalid header name %q", redact.SanitizeForLog(name, 64)),
			}
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, &Error{
				Code:    CodeHeaderValidationFailed,
				Message: fmt.Sprintf("header %s value contains CR/LF", name),
			}
		}
		sanitized[name] = redact.SanitizeForLog(redact.MaskSensitiveData(value), maxHeaderLogLength)
	}

	return sanitized, nil
}
