package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trendscribe/internal/app"
	"trendscribe/internal/usecase/notify"
)

// ChannelHealthResponse represents the health status of all notification channels.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// newMetricsServer builds the metrics listener on port.
//
// The server exposes the following endpoints:
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /health/channels - notification channel state with circuit breakers
func newMetricsServer(port int, notifyService notify.Service) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health/channels", channelHealthHandler(notifyService))
	return app.NewServer(fmt.Sprintf(":%d", port), mux)
}

// channelHealthHandler returns 200 while every enabled channel's circuit
// breaker is closed and 503 once any of them is open.
func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := notifyService.GetChannelHealth()

		healthy := true
		for _, status := range statuses {
			if status.Enabled && status.CircuitBreakerOpen {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{
			Healthy:  healthy,
			Channels: statuses,
		})
	}
}
