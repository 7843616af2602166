package netguard

import (
	"net"
)

// ipRange is one entry of the private-range pattern set.
type ipRange struct {
	kind string
	net  *net.IPNet
}

// privateRanges is the fixed, ordered pattern set for private/internal
// address classification. ClassifyIP is the only consumer; both the URL
// validator (literal IPs) and the DNS guard (resolved answers) go through
// it, as does the dial-time transport check. A second, divergent matcher is
// exactly the bug this layout exists to prevent.
var privateRanges = buildRanges([]struct{ kind, cidr string }{
	{"loopback", "127.0.0.0/8"},
	{"private", "10.0.0.0/8"},
	{"private", "172.16.0.0/12"},
	{"private", "192.168.0.0/16"},
	{"link-local", "169.254.0.0/16"},
	{"current-network", "0.0.0.0/8"},
	{"carrier-grade NAT", "100.64.0.0/10"},
	{"multicast", "224.0.0.0/4"},
	{"reserved", "240.0.0.0/4"},
	{"loopback", "::1/128"},
	{"unique-local", "fc00::/7"},
	{"link-local", "fe80::/10"},
})

// cloudMetadataIPs are instance-metadata service addresses. Most fall inside
// the ranges above already; the list exists so rejections name the real
// reason and so the odd public-range metadata address stays blocked.
var cloudMetadataIPs = []net.IP{
	net.ParseIP("169.254.169.254"), // AWS, GCP, Azure, DigitalOcean
	net.ParseIP("169.254.170.2"),   // AWS ECS task metadata
	net.ParseIP("100.100.100.200"), // Alibaba Cloud
	net.ParseIP("192.0.0.192"),     // Oracle Cloud IMDS
	net.ParseIP("fd00:ec2::254"),   // AWS IPv6 metadata
}

func buildRanges(entries []struct{ kind, cidr string }) []ipRange {
	out := make([]ipRange, 0, len(entries))
	for _, e := range entries {
		_, n, err := net.ParseCIDR(e.cidr)
		if err != nil {
			panic("netguard: bad built-in CIDR " + e.cidr)
		}
		out = append(out, ipRange{kind: e.kind, net: n})
	}
	return out
}

// ClassifyIP matches ip against the private-range pattern set. It returns
// private=true with the matched range kind for any address that must not be
// an outbound target, and private=false with kind "public" otherwise.
// IPv4-mapped IPv6 addresses are normalized to IPv4 before matching, so
// ::ffff:10.0.0.1 classifies the same as 10.0.0.1.
func ClassifyIP(ip net.IP) (kind string, private bool) {
	if ip == nil {
		return "invalid", true
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}

	for _, meta := range cloudMetadataIPs {
		if ip.Equal(meta) {
			return "cloud-metadata", true
		}
	}

	if ip.IsUnspecified() {
		return "unspecified", true
	}

	for _, r := range privateRanges {
		if r.net.Contains(ip) {
			return r.kind, true
		}
	}

	return "public", false
}

// isPrivateIP is the boolean shorthand for ClassifyIP.
func isPrivateIP(ip net.IP) bool {
	_, private := ClassifyIP(ip)
	return private
}
