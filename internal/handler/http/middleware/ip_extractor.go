// Package middleware provides HTTP middleware shared by the API server:
// CORS handling and client IP extraction for per-client news throttling.
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	pkgconfig "trendscribe/pkg/config"
)

// IPExtractor extracts the client IP address from HTTP requests.
// The news gateway uses it as the throttle key.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. It cannot be spoofed by
// the client and is the default.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
//
// Examples:
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1" (no port)
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	// Enabled turns on header based extraction.
	Enabled bool

	// AllowedCIDRs are the trusted proxy ranges. Single IPs are stored as
	// /32 or /128 prefixes.
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr ("IP:port" or "IP") is inside one of
// the trusted ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig loads trusted proxy configuration from environment variables.
//
// Environment Variables:
//   - RATE_LIMIT_TRUST_PROXY: "true" enables header extraction (default: false)
//   - RATE_LIMIT_TRUSTED_PROXIES: comma separated IPs or CIDRs, required when enabled
//
// Invalid configuration is an error so the process refuses to start rather
// than silently trusting or ignoring proxies.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	config := &TrustedProxyConfig{
		Enabled: pkgconfig.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}
	if !config.Enabled {
		return config, nil
	}

	proxies := pkgconfig.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil)
	if len(proxies) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	for _, proxy := range proxies {
		prefix, err := parsePrefix(proxy)
		if err != nil {
			return nil, err
		}
		config.AllowedCIDRs = append(config.AllowedCIDRs, prefix)
	}

	return config, nil
}

func parsePrefix(s string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix.Masked(), nil
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid IP or CIDR format '%s': must be valid IP address or CIDR notation (e.g., '192.168.1.1' or '10.0.0.0/8')", s)
	}
	ip = ip.Unmap()
	return netip.PrefixFrom(ip, ip.BitLen()), nil
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, but only
// when the peer is a trusted proxy. Otherwise it uses RemoteAddr, so a
// client cannot rotate its throttle key by forging headers.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a new TrustedProxyExtractor with the given configuration.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ExtractIP implements IPExtractor.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return extractIPFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted proxy attempting to set X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return extractIPFromAddr(r.RemoteAddr)
	}

	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String(), nil
	}

	return extractIPFromAddr(r.RemoteAddr)
}

// NewIPExtractor returns a TrustedProxyExtractor when proxy trust is
// enabled, and a RemoteAddrExtractor otherwise.
func NewIPExtractor(config *TrustedProxyConfig) IPExtractor {
	if config == nil || !config.Enabled {
		return &RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(*config)
}

// ClientIP returns the extracted client IP, falling back to the raw
// RemoteAddr when extraction fails.
func ClientIP(extractor IPExtractor, r *http.Request) string {
	ip, err := extractor.ExtractIP(r)
	if err != nil || ip == "" {
		return r.RemoteAddr
	}
	return ip
}

// extractIPFromAddr extracts the IP address from a "host:port" or "IP" string.
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the client entry of an X-Forwarded-For list
// ("client, proxy1, proxy2"), or "" when it is not a valid IP.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
