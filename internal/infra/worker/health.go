package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ReadinessCheck reports a dependency problem, or nil when healthy.
type ReadinessCheck func(ctx context.Context) error

// HealthServer serves the worker's probes:
//   - /health: liveness, always 200
//   - /health/ready: 200 once SetReady(true) was called and every check
//     passes, 503 otherwise
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady atomic.Bool
	checks  map[string]ReadinessCheck
	server  *http.Server
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHealthServer creates a health server on addr. It starts not ready.
func NewHealthServer(addr string, logger *slog.Logger, checks map[string]ReadinessCheck) *HealthServer {
	h := &HealthServer{
		addr:   addr,
		logger: logger,
		checks: checks,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return h
}

// Handler exposes the probe routes, for tests and for mounting elsewhere.
func (h *HealthServer) Handler() http.Handler {
	return h.server.Handler
}

// Start serves until ctx is done, then shuts down within 5s. It returns nil
// after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
}

// SetReady marks initialization as complete (or shutdown as begun).
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !h.isReady.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = "unhealthy"
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			h.logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
			continue
		}
		resp.Checks[name] = "healthy"
	}
	h.write(w, status, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, status int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
