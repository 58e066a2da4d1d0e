package iputil

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ParseCIDRs parses a list of IP addresses or CIDR notations. Bare IPs get
// a /32 (or /128) mask.
func ParseCIDRs(cidrStrings []string) ([]*net.IPNet, error) {
	if len(cidrStrings) == 0 {
		return nil, nil
	}

	cidrs := make([]*net.IPNet, 0, len(cidrStrings))
	for _, cidrStr := range cidrStrings {
		if ip := net.ParseIP(cidrStr); ip != nil {
			mask := net.CIDRMask(128, 128)
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			}
			cidrs = append(cidrs, &net.IPNet{IP: ip, Mask: mask})
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid IP/CIDR format: %s (%w)", cidrStr, err)
		}
		cidrs = append(cidrs, ipNet)
	}
	return cidrs, nil
}

// IsIPInAnyCIDR checks whether ip falls within any of the given ranges.
func IsIPInAnyCIDR(ip net.IP, cidrs []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, cidr := range cidrs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIP extracts the client IP from the request. Forwarding headers
// (the configured header first, then X-Forwarded-For) are honored only when
// the immediate peer is a trusted proxy; otherwise RemoteAddr wins.
func GetClientIP(r *http.Request, trustedProxies []*net.IPNet, clientIPHeader string) string {
	remoteIPStr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIPStr = r.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteIPStr)

	if remoteIP != nil && IsIPInAnyCIDR(remoteIP, trustedProxies) {
		if clientIPHeader != "" {
			if h := strings.TrimSpace(r.Header.Get(clientIPHeader)); h != "" && net.ParseIP(h) != nil {
				return h
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
	}

	return remoteIPStr
}
