package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery outcomes. The drop outcomes mean the channel was never called.
const (
	outcomeSent        = "sent"
	outcomeFailed      = "failed"
	outcomePoolFull    = "pool_full"
	outcomeCircuitOpen = "circuit_open"
	outcomeShutdown    = "shutdown"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_notify_deliveries_total",
			Help: "Post notifications by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "post_notify_delivery_duration_seconds",
			Help:    "Time spent in a channel send, including webhook retries",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	breakerOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_notify_breaker_opened_total",
			Help: "Times a channel circuit breaker opened",
		},
		[]string{"channel"},
	)

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "post_notify_in_flight",
		Help: "Notification goroutines currently running",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "post_notify_channels_enabled",
		Help: "Configured notification channels that are enabled",
	})
)

// recordDelivery counts one notification. Duration is observed only when the
// channel was actually called.
func recordDelivery(channel, outcome string, d time.Duration) {
	deliveriesTotal.WithLabelValues(channel, outcome).Inc()
	if outcome == outcomeSent || outcome == outcomeFailed {
		deliveryDuration.WithLabelValues(channel).Observe(d.Seconds())
	}
}

func recordBreakerOpened(channel string) {
	breakerOpenedTotal.WithLabelValues(channel).Inc()
}

// trackInFlight raises the in-flight gauge until the returned func is called.
func trackInFlight() func() {
	inFlight.Inc()
	return inFlight.Dec
}

func setChannelsEnabled(n int) {
	channelsEnabled.Set(float64(n))
}
