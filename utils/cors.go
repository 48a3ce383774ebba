package utils

import (
	"net"
	"net/url"
	"strings"
)

// privateNetworks are the ranges considered local for CORS purposes: RFC1918,
// loopback, and link-local, for both IPv4 and IPv6.
var privateNetworks = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, network, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}()

// IsAllowedOrigin checks whether an Origin header value should be trusted.
// It allows localhost, private/link-local IPs, .local hostnames, and
// single-label LAN hostnames. Public internet origins are blocked.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}

	// IP literals are judged by the private ranges alone. IPv6 literals carry
	// no dots, so this must come before the single-label hostname check.
	if ip := net.ParseIP(hostname); ip != nil {
		for _, network := range privateNetworks {
			if network.Contains(ip) {
				return true
			}
		}
		return false
	}

	// Single-label hostnames resolve on the LAN, not the public internet.
	return !strings.Contains(hostname, ".")
}
