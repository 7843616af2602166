package netguard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// newGuardedTransport returns a transport whose dialer re-classifies the
// target address at connect time. This is the last line of the rebinding
// defense: even if DNS flipped between the pre-dispatch check and the dial,
// the connection still goes through ClassifyIP.
func newGuardedTransport() *http.Transport {
	return &http.Transport{
		DialContext:         guardedDialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// newOpenTransport returns the transport used for AllowPrivateIPs calls.
// Same resource limits, no dial-time classification.
func newOpenTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// guardedDialContext validates the address before connecting. Literal IPs
// are classified directly; hostnames are resolved here and every answer is
// checked, then the first answer is dialed directly so the checked address
// is the connected address (no second resolution to race against).
func guardedDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
		port = ""
	}

	if ip := net.ParseIP(host); ip != nil {
		if kind, private := ClassifyIP(ip); private {
			return nil, fmt.Errorf("dial blocked: %s is a %s address", ip, kind)
		}
		return (&net.Dialer{}).DialContext(ctx, network, addr)
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf("dial blocked: DNS lookup for %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("dial blocked: no addresses resolved for %s", host)
	}
	for _, ip := range ips {
		if kind, private := ClassifyIP(ip); private {
			return nil, fmt.Errorf("dial blocked: %s resolves to %s address %s", host, kind, ip)
		}
	}

	target := ips[0].String()
	if port != "" {
		target = net.JoinHostPort(target, port)
	}
	return (&net.Dialer{}).DialContext(ctx, network, target)
}

// checkRedirect re-validates every redirect hop through the same URL
// validator and caps the chain length. allowPrivateIPs mirrors the
// originating request's setting so a relaxed call stays relaxed across
// redirects.
func checkRedirect(maxRedirects int, allowPrivateIPs bool) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if err := ValidateURL(req.URL.String(), allowPrivateIPs); err != nil {
			return fmt.Errorf("redirect to unsafe URL: %w", err)
		}
		return nil
	}
}
