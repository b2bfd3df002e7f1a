package router

import (
	"net"
	"strings"
)

// NormalizeHost strips a single trailing root dot and lower-cases the rest.
func NormalizeHost(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(raw, "."))
}

// SplitHost returns the host part of a "host:port" address. Anything that
// does not parse as host:port is returned as is.
func SplitHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
