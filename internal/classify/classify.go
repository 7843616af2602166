// Package classify flags hostnames that look like internal infrastructure
// before any network I/O happens.
//
// Classification is heuristic by design: it runs on the hostname string
// alone, so it can reject obvious SSRF vectors (localhost, cloud metadata
// names, *.internal) without paying for a DNS lookup. It is the first of two
// gates — the netguard DNS rebinding check covers the hostnames these
// heuristics cannot see through.
package classify

import (
	"strings"

	"golang.org/x/net/idna"
)

// Classification is the verdict for a single hostname.
type Classification struct {
	// IsSSRFVector is set for hostnames that are themselves attack targets:
	// loopback names, cloud metadata endpoints, link-local service names.
	IsSSRFVector bool

	// IsInternal is set for hostnames that follow internal-network naming
	// conventions (.internal, .local, .corp, cluster-local service names).
	IsInternal bool

	// Warnings lists human-readable reasons for the flags, for audit events.
	Warnings []string
}

// Flagged reports whether the hostname tripped any heuristic.
func (c Classification) Flagged() bool {
	return c.IsSSRFVector || c.IsInternal
}

// blockedHosts are exact hostnames that are never legitimate outbound
// targets for this CLI.
var blockedHosts = map[string]string{
	"localhost":                "loopback hostname",
	"metadata.google.internal": "cloud metadata endpoint",
	"metadata.gce.internal":    "cloud metadata endpoint",
	"metadata.internal":        "cloud metadata endpoint",
	"metadata":                 "cloud metadata endpoint",
	"instance-data":            "cloud metadata endpoint",
}

// internalSuffixes are DNS suffixes conventionally reserved for
// non-internet-routable infrastructure.
var internalSuffixes = []string{
	".localhost",
	".local",
	".internal",
	".intranet",
	".corp",
	".lan",
	".home",
	".home.arpa",
	".svc",
	".cluster.local",
	".consul",
}

// Hostname classifies a hostname by naming heuristics alone. It performs no
// DNS resolution and never fails; unparsable input is simply flagged.
func Hostname(host string) Classification {
	var c Classification

	h := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if h == "" {
		c.IsSSRFVector = true
		c.Warnings = append(c.Warnings, "empty hostname")
		return c
	}

	// Normalize punycode so xn-- encodings cannot mask a flagged name.
	if strings.Contains(h, "xn--") {
		if uni, err := idna.Lookup.ToUnicode(h); err == nil {
			h = uni
		}
	}

	if reason, ok := blockedHosts[h]; ok {
		c.IsSSRFVector = true
		c.Warnings = append(c.Warnings, reason+": "+h)
		return c
	}

	for _, suffix := range internalSuffixes {
		if strings.HasSuffix(h, suffix) {
			c.IsInternal = true
			c.Warnings = append(c.Warnings, "internal naming suffix "+suffix)
			break
		}
	}

	// Single-label hostnames (no dot) only resolve through a local search
	// domain, which makes them internal by construction.
	if !strings.Contains(h, ".") {
		c.IsInternal = true
		c.Warnings = append(c.Warnings, "single-label hostname resolves via search domain")
	}

	return c
}
