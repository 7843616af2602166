// Package netguard is the secure outbound request gateway for meshctl.
// Every network call the CLI makes funnels through this package before
// touching an HTTP endpoint.
//
// # Overview
//
// The gateway defends against:
//   - Server-Side Request Forgery (SSRF) (CWE-918): dangerous schemes,
//     private-IP literals and internal-looking hostnames are rejected before
//     any connection is attempted.
//   - DNS rebinding: domain hostnames are resolved with a bounded lookup and
//     every returned address is re-classified against the same private-range
//     table used for literal IPs, closing the gap between validation time
//     and connect time. The transport's dialer re-checks the address once
//     more at connect time.
//   - Header injection (CWE-113): header names are allowlisted and values
//     containing CR/LF are rejected.
//   - Resource exhaustion: response sizes are capped (declared and actual),
//     timeouts are clamped to a fixed range, and every request carries a
//     one-shot lifecycle token that releases its timer on all exit paths.
//
// # Usage
//
//	client := netguard.New(netguard.Options{
//	    Logger:  logger.With("component", "netguard"),
//	    Auditor: audit.NewEmitter(sink, logger),
//	})
//
//	resp, err := client.Get(ctx, "https://api.example.com/v1/status")
//	if err != nil {
//	    if netguard.CodeOf(err) == netguard.CodeSSRFViolation {
//	        // rejected before the network was touched
//	    }
//	    return err
//	}
//
// Relaxed behavior is opt-in per call and visible at the call site:
//
//	resp, err := client.Get(ctx, url,
//	    netguard.AllowPrivateIPs(),
//	    netguard.WithTimeout(5*time.Second),
//	    netguard.WithAudit())
//
// AllowPrivateIPs never unlocks data:, file: or javascript: URLs; those are
// rejected unconditionally.
//
// # Error Handling
//
// Security rejections carry a stable Code and are never downgraded to plain
// failures. The gateway both logs and returns rejections — a deliberate
// exception to the handle-errors-once rule: security events need an audit
// trail AND must propagate so the caller denies the operation.
//
// # Ordering
//
// Within one request: validation strictly precedes dispatch, dispatch
// strictly precedes response governance. Across requests there is no
// ordering; arbitrarily many may be in flight, each with an independent
// lifecycle token. The validators are stateless functions over immutable
// tables, so no locking is involved.
package netguard
