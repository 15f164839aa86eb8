// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricRequests         = "dashboard_requests_total"
	MetricRequestErrors    = "dashboard_request_errors_total"
	MetricRequestDuration  = "dashboard_request_duration_seconds"
	MetricCertificateMiss  = "dashboard_certificate_misses_total"
	MetricWatchEvents      = "dashboard_watch_events_total"
	MetricSnapshotBackends = "dashboard_snapshot_backends"

	// Export metrics.
	MetricExports     = "dashboard_exports_total"
	MetricExportBytes = "dashboard_export_bytes"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
