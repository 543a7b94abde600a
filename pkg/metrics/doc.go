// Package metrics provides Prometheus-compatible metrics collection for the
// fakerest server.
//
// This package implements the Prometheus text exposition format (text/plain;
// version=0.0.4) without any external dependencies, using only the standard
// library. Exposition happens through Registry.WriteTo; the server itself
// does not open a metrics endpoint.
//
// Supported metric types:
//   - Counter: monotonically increasing value (e.g., request counts)
//   - Gauge: value that can go up or down (e.g., active connections)
//   - Histogram: distribution of values with configurable buckets (e.g., latencies)
//
// All metrics are thread-safe and can be updated from multiple goroutines.
//
// # Default Metrics
//
// The package provides pre-defined metrics for tracking server activity:
//
//   - fakerest_requests_total: Counter for served requests (labels: method, path, status)
//   - fakerest_request_duration_seconds: Histogram for request latency (labels: method, path)
//   - fakerest_routes_total: Gauge for configured routes (labels: method)
//   - fakerest_active_connections: Gauge for open client connections
//   - fakerest_outcomes_total: Counter for resolution outcomes (labels: outcome)
//   - fakerest_parse_errors_total: Counter for parser rejections (labels: kind)
//
// # Usage
//
//	// Initialize the default metrics registry
//	registry := metrics.Init()
//
//	// Record a served request
//	if vec, err := metrics.RequestsTotal.WithLabels("GET", "/api/users", "200"); err == nil {
//	    _ = vec.Inc()
//	}
//	if vec, err := metrics.RequestDuration.WithLabels("GET", "/api/users"); err == nil {
//	    vec.Observe(0.123)
//	}
//
//	// Dump everything in Prometheus text format
//	_, _ = registry.WriteTo(os.Stdout)
//
// Custom metrics can also be created:
//
//	registry := metrics.NewRegistry()
//	counter := registry.NewCounter("my_counter", "Description of counter", "label1", "label2")
//	if vec, err := counter.WithLabels("value1", "value2"); err == nil {
//	    _ = vec.Inc()
//	}
package metrics
