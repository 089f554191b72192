// Package metrics holds the bot's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HandlerCounter counts handled updates per handler and status.
	HandlerCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinobot_handler_total",
			Help: "Count of processed updates",
		},
		[]string{"handler", "status"},
	)
	// HandlerDuration observes handler latency.
	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinobot_handler_duration_seconds",
			Help:    "Time taken to process an update",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"handler"},
	)
	// MessagesSent counts outbound messages by kind (text, photo, location, callback).
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinobot_messages_sent_total",
			Help: "Count of sent messages",
		},
		[]string{"kind"},
	)
	// SendFailures counts dispatcher jobs that failed after retries.
	SendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinobot_send_failures_total",
			Help: "Count of outbound Telegram calls that failed",
		},
		[]string{"action", "kind"},
	)
	// CacheOperations counts catalog cache lookups by result (hit, miss, error).
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinobot_cache_operations_total",
			Help: "Catalog cache lookups",
		},
		[]string{"result"},
	)
	// FavouriteToggles counts favourite changes by result (added, removed).
	FavouriteToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinobot_favourite_toggles_total",
			Help: "Favourite toggles",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HandlerCounter,
			HandlerDuration,
			MessagesSent,
			SendFailures,
			CacheOperations,
			FavouriteToggles,
		)
	})
}
