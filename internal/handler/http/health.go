package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/observability/metrics"
	"trendscribe/internal/usecase/generate"
	"trendscribe/internal/usecase/notify"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // healthy, degraded or unhealthy
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// GenerationStatus is satisfied by *generate.Service.
type GenerationStatus interface {
	State() generate.RunState
	LastRun() *generate.RunResult
}

// ChannelHealthReporter is satisfied by notify.Service.
type ChannelHealthReporter interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// ActiveKeyCounter is satisfied by *ratelimit.Limiter.
type ActiveKeyCounter interface {
	ActiveKeys(ctx context.Context) (int, error)
}

// HealthHandler reports database, generation, notification and throttle
// state. Only the database can make the service unhealthy (503); the
// rest report degraded at worst.
type HealthHandler struct {
	DB         *sql.DB
	Generation GenerationStatus
	Notify     ChannelHealthReporter
	Throttle   ActiveKeyCounter
	Version    string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus, 4)
	if h.DB != nil {
		checks["database"] = h.checkDatabase(ctx)
	} else {
		checks["database"] = CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if h.Generation != nil {
		checks["generation"] = h.checkGeneration()
	}
	if h.Notify != nil {
		checks["notifications"] = h.checkNotifications()
	}
	if h.Throttle != nil {
		checks["rate_limiter"] = h.checkThrottle(ctx)
	}

	status := statusHealthy
	for _, c := range checks {
		if c.Status == statusUnhealthy {
			status = statusUnhealthy
			break
		}
		if c.Status == statusDegraded {
			status = statusDegraded
		}
	}
	code := http.StatusOK
	if status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the database and reports pool statistics. A pool
// at 80% utilization or more is degraded.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	metrics.RecordDBStats(stats)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: statusHealthy, Details: details}
}

// checkGeneration is degraded when the last accepted run failed.
func (h *HealthHandler) checkGeneration() CheckStatus {
	details := map[string]any{"state": h.Generation.State().String()}

	last := h.Generation.LastRun()
	if last == nil {
		return CheckStatus{Status: statusHealthy, Details: details}
	}
	details["last_run_id"] = last.RunID
	details["last_run_trigger"] = last.Trigger
	details["last_run_finished_at"] = last.FinishedAt.UTC().Format(time.RFC3339)
	if last.Err != nil {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "last generation run failed",
			Details: details,
		}
	}
	details["last_post_id"] = last.PostID
	return CheckStatus{Status: statusHealthy, Details: details}
}

// checkNotifications is degraded while any enabled channel's breaker is open.
func (h *HealthHandler) checkNotifications() CheckStatus {
	channels := h.Notify.GetChannelHealth()
	status := statusHealthy
	for _, ch := range channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			status = statusDegraded
		}
	}
	return CheckStatus{Status: status, Details: map[string]any{"channels": channels}}
}

// checkThrottle is informational; the news throttle fails open.
func (h *HealthHandler) checkThrottle(ctx context.Context) CheckStatus {
	keys, err := h.Throttle.ActiveKeys(ctx)
	if err != nil {
		return CheckStatus{Status: statusDegraded, Message: respond.SanitizeError(err)}
	}
	return CheckStatus{Status: statusHealthy, Details: map[string]any{"active_keys": keys}}
}

// ReadyHandler answers readiness probes: 200 once the database answers.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Default().Debug("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler answers liveness probes and always returns 200.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Default().Debug("alive: failed to write response", slog.Any("error", err))
	}
}
