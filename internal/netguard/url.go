package netguard

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/meshops/meshctl/internal/classify"
)

// deniedSchemePrefixes are rejected unconditionally, even with
// AllowPrivateIPs: none of them is ever a legitimate outbound-HTTP target.
// Defense in depth, independent of the IP-allowlisting escape hatch.
var deniedSchemePrefixes = []string{
	"data:",
	"file:",
	"javascript:",
}

// ValidateURL checks whether rawURL is a safe outbound target. It rejects
// dangerous schemes, private-IP literals and internal-looking hostnames.
// Domain hostnames are judged by naming heuristics only; the DNS rebinding
// check covers what the string cannot reveal.
//
// allowPrivateIPs relaxes the private-target rules but never the scheme
// denial.
func ValidateURL(rawURL string, allowPrivateIPs bool) error {
	if strings.TrimSpace(rawURL) == "" {
		return &Error{Code: CodeSSRFViolation, Message: "empty URL"}
	}

	lower := strings.ToLower(strings.TrimSpace(rawURL))
	for _, prefix := range deniedSchemePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return &Error{
				Code:    CodeSSRFViolation,
				Message: fmt.Sprintf("scheme %q is never a valid outbound target", strings.TrimSuffix(prefix, ":")),
			}
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return &Error{Code: CodeSSRFViolation, Message: "unparsable URL", Err: err}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return &Error{
			Code:    CodeSSRFViolation,
			Message: fmt.Sprintf("disallowed scheme %q (only http/https)", u.Scheme),
		}
	}

	host := u.Hostname()
	if host == "" {
		return &Error{Code: CodeSSRFViolation, Message: "URL has no hostname"}
	}

	// Literal IP: classify directly against the private-range table.
	if ip := net.ParseIP(host); ip != nil {
		if kind, private := ClassifyIP(ip); private && !allowPrivateIPs {
			return &Error{
				Code:    CodeSSRFViolation,
				Message: fmt.Sprintf("target %s is a %s address", host, kind),
			}
		}
		return nil
	}

	// Domain: escalate to the naming-heuristic classifier.
	if c := classify.Hostname(host); c.Flagged() && !allowPrivateIPs {
		reason := "internal-looking hostname"
		if len(c.Warnings) > 0 {
			reason = c.Warnings[0]
		}
		return &Error{
			Code:    CodeSSRFViolation,
			Message: fmt.Sprintf("target %s rejected: %s", host, reason),
		}
	}

	return nil
}
