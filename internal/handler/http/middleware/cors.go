package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// OriginValidator decides whether a cross-origin request may read the response.
type OriginValidator interface {
	IsAllowed(origin string) bool
	GetAllowedOrigins() []string
}

// WhitelistValidator matches origins exactly, ignoring case and a trailing
// slash. The single entry "*" allows every origin.
type WhitelistValidator struct {
	allowedOrigins []string
	allowAll       bool
}

// NewWhitelistValidator normalizes origins and drops empty entries.
func NewWhitelistValidator(origins []string) *WhitelistValidator {
	v := &WhitelistValidator{allowedOrigins: make([]string, 0, len(origins))}
	for _, origin := range origins {
		origin = normalizeOrigin(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			v.allowAll = true
		}
		v.allowedOrigins = append(v.allowedOrigins, origin)
	}
	return v
}

// IsAllowed implements OriginValidator. An empty origin is never allowed.
func (v *WhitelistValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	if v.allowAll {
		return true
	}
	for _, allowed := range v.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// AllowsAll reports whether the wildcard entry is configured.
func (v *WhitelistValidator) AllowsAll() bool {
	return v.allowAll
}

// GetAllowedOrigins returns a copy of the normalized origins.
func (v *WhitelistValidator) GetAllowedOrigins() []string {
	out := make([]string, len(v.allowedOrigins))
	copy(out, v.allowedOrigins)
	return out
}

func normalizeOrigin(origin string) string {
	origin = strings.ToLower(strings.TrimSpace(origin))
	return strings.TrimSuffix(origin, "/")
}

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedMethods is sent in preflight responses.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string

	// AllowedHeaders is sent in preflight responses.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string

	// ExposedHeaders lets browsers read throttle and correlation headers.
	ExposedHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials. The API has
	// no cookies or auth headers, so this defaults to false.
	AllowCredentials bool

	// MaxAge is the preflight cache duration in seconds. Default: 86400.
	MaxAge int

	// Validator decides which origins are echoed back.
	Validator OriginValidator

	// Logger receives policy violations at warn and preflights at debug.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// CORS returns an HTTP middleware that handles CORS for cross-origin requests.
//
// Behavior:
//   - No Origin header: same-origin request, passed through untouched
//   - Origin not allowed: warning logged, passed through without CORS headers
//   - Allowed OPTIONS preflight: CORS headers set, 204 returned
//   - Allowed actual request: Allow-Origin set, passed to next
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if config.Validator == nil || !config.Validator.IsAllowed(origin) {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method),
					slog.String("remote_addr", r.RemoteAddr))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)

				logger.Debug("CORS: preflight request",
					slog.String("origin", origin),
					slog.String("requested_method", r.Header.Get("Access-Control-Request-Method")),
					slog.String("requested_headers", r.Header.Get("Access-Control-Request-Headers")))

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
