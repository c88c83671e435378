// Package privacy provides helpers for redacting personal data before it
// reaches logs or audit streams.
package privacy

import (
	"net"
	"strings"
)

// AnonymizeIP truncates an IP address so it can be logged without identifying
// a single host. IPv4 addresses keep their first three octets, IPv6 addresses
// keep their /64 prefix. Unparseable input is fully redacted.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "redacted"
	}

	if v4 := parsed.To4(); v4 != nil {
		masked := v4.Mask(net.CIDRMask(24, 32))
		return masked.String() + "/24"
	}

	masked := parsed.Mask(net.CIDRMask(64, 128))
	return masked.String() + "/64"
}
