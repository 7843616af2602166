package netguard

import (
	"context"
	"fmt"
	"net"
)

// Resolver is the lookup dependency of the rebinding check. *net.Resolver
// satisfies it; tests inject a fake.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// DNSResult reports what a rebinding check actually resolved, for audit
// events. ResolvedIP is set whenever a lookup completed — on rejection it
// names the offending address, on success the first answer.
type DNSResult struct {
	ResolvedIP string
}

// ValidateDNSRebinding resolves hostname and re-classifies every returned
// address against the same private-range table used for literal IPs.
//
// A hostname can be public at validation time and private at connect time
// (classic rebinding); only a post-resolution check closes that TOCTOU gap —
// string heuristics cannot. The lookup is bounded by DNSLookupTimeout and
// fails closed: an unresolvable host must not be reachable.
//
// Literal-IP hostnames are a no-op success; the URL validator already
// classified them. All answers are checked, not just the first — a
// multi-answer domain with one private address is rejected outright.
func ValidateDNSRebinding(ctx context.Context, resolver Resolver, hostname string, allowPrivateIPs bool) (DNSResult, error) {
	if net.ParseIP(hostname) != nil {
		return DNSResult{}, nil
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	lookupCtx, cancel := context.WithTimeout(ctx, DNSLookupTimeout)
	defer cancel()

	ips, err := resolver.LookupIP(lookupCtx, "ip", hostname)
	if err != nil {
		// Fail closed: timeout and resolver errors both reject.
		return DNSResult{}, &Error{
			Code:    CodeDNSRebindingViolation,
			Message: fmt.Sprintf("DNS resolution failed for %s", hostname),
			Err:     err,
		}
	}
	if len(ips) == 0 {
		return DNSResult{}, &Error{
			Code:    CodeDNSRebindingViolation,
			Message: fmt.Sprintf("no addresses resolved for %s", hostname),
		}
	}

	for _, ip := range ips {
		if kind, private := ClassifyIP(ip); private && !allowPrivateIPs {
			return DNSResult{ResolvedIP: ip.String()}, &Error{
				Code:    CodeDNSRebindingViolation,
				Message: fmt.Sprintf("%s resolves to %s address %s", hostname, kind, ip),
			}
		}
	}

	return DNSResult{ResolvedIP: ips[0].String()}, nil
}
