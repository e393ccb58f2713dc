// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the scan-side metrics:
//   - Scan pass metrics (count by status, duration, last success)
//   - Link check metrics (count by service and outcome)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "linktracker/internal/observability/metrics"
//
//	func checkLink(service string) {
//	    // ... run the check ...
//	    metrics.RecordLinkCheck(service, "update")
//	}
package metrics
