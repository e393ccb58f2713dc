package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan metrics track the background scan loop
var (
	// ScanPassesTotal counts completed scan passes by status
	ScanPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_passes_total",
			Help: "Total number of scan passes by status (success/failure/panic)",
		},
		[]string{"status"},
	)

	// ScanPassDuration measures the duration of one full scan pass
	ScanPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_pass_duration_seconds",
			Help:    "Duration of a full scan pass in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		},
	)

	// ScanLastSuccessTimestamp records the unix time of the last successful pass
	ScanLastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scan_last_success_timestamp",
			Help: "Unix timestamp of the last successful scan pass",
		},
	)

	// LinkChecksTotal counts freshness checks by service and outcome
	LinkChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_checks_total",
			Help: "Total number of link freshness checks by service and outcome",
		},
		[]string{"service", "outcome"},
	)
)

// Database metrics track query performance of the persistence adapters
var (
	// DBQueryDuration measures database query duration by operation
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active connections in the pool
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle connections in the pool
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
