package metrics

import "time"

// RecordScanPass records the outcome of one scan pass.
// Status should be "success", "failure" or "panic".
func RecordScanPass(status string, duration time.Duration) {
	ScanPassesTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		ScanPassDuration.Observe(duration.Seconds())
	}
	if status == "success" {
		ScanLastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordLinkCheck records one freshness check. Service is the tracked host
// (e.g. "github.com"); outcome is one of "update", "no_update", "error",
// "unsupported" or "invalid_url".
func RecordLinkCheck(service, outcome string) {
	LinkChecksTotal.WithLabelValues(service, outcome).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query (e.g. "get_links", "set_last_updated").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
