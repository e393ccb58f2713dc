package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for digest delivery monitoring
var (
	// deliverySentTotal tracks delivery results per transport
	deliverySentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_delivery_total",
			Help: "Total number of digest delivery attempts",
		},
		[]string{"transport", "status"}, // status: success|failure
	)

	// deliveryDuration tracks how long one transport publish takes
	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_delivery_duration_seconds",
			Help:    "Digest delivery duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"transport"},
	)

	// digestEventsPerDelivery tracks how many update events one digest carries
	digestEventsPerDelivery = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_events_per_delivery",
			Help:    "Number of update events per delivered digest",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"transport"},
	)
)
