package middleware

import (
	"fmt"
	"net/url"
	"strings"

	pkgconfig "trendscribe/pkg/config"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "X-Request-ID"}
	corsExposedHeaders = []string{
		"X-Request-ID", "X-Trace-Id", "Retry-After",
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
	}
	validCORSMethods = map[string]bool{
		"GET": true, "HEAD": true, "POST": true, "PUT": true,
		"DELETE": true, "PATCH": true, "OPTIONS": true,
	}
)

// LoadCORSConfig loads CORS configuration from environment variables.
//
// Environment Variables:
//   - CORS_ALLOWED_ORIGINS: comma separated origins, or "*" (default: "*")
//   - CORS_ALLOWED_METHODS: default GET,POST,OPTIONS
//   - CORS_ALLOWED_HEADERS: default Content-Type,X-Request-ID
//   - CORS_MAX_AGE: preflight cache seconds (default: 86400)
//
// Each origin must be a bare http(s) scheme and host, without path, query
// or trailing slash.
func LoadCORSConfig() (*CORSConfig, error) {
	origins := pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"*"})
	for _, origin := range origins {
		if err := validateOrigin(origin); err != nil {
			return nil, fmt.Errorf("failed to load allowed origins: %w", err)
		}
	}

	methods := pkgconfig.GetEnvStringList("CORS_ALLOWED_METHODS", defaultCORSMethods)
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !validCORSMethods[m] {
			return nil, fmt.Errorf("invalid HTTP method '%s' in CORS_ALLOWED_METHODS", m)
		}
		normalized = append(normalized, m)
	}

	maxAge := pkgconfig.GetEnvInt("CORS_MAX_AGE", 86400)
	if maxAge < 0 {
		return nil, fmt.Errorf("CORS_MAX_AGE must be non-negative, got: %d", maxAge)
	}

	return &CORSConfig{
		AllowedMethods: normalized,
		AllowedHeaders: pkgconfig.GetEnvStringList("CORS_ALLOWED_HEADERS", defaultCORSHeaders),
		ExposedHeaders: corsExposedHeaders,
		MaxAge:         maxAge,
		Validator:      NewWhitelistValidator(origins),
	}, nil
}

func validateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin URL '%s': %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must use http or https scheme: %s", origin)
	}
	if u.Host == "" {
		return fmt.Errorf("origin must include a host: %s", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must not include path, query or fragment: %s", origin)
	}
	return nil
}
