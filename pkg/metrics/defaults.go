package metrics

import (
	"sync"
	"time"
)

// Default metrics for the fakerest server.
// These are initialized by calling Init().
//
// # Label Conventions
//
//   - method: the HTTP method token as received (GET, POST, ...). Requests
//     carrying an unrecognized token are recorded under that token verbatim.
//   - path: the matched route path, or "unmatched" when no route matched. The
//     client-supplied path is never a label value.
//   - status: the numeric response code (200, 404, ...).
//   - outcome: how resolution ended (matched, no_route, method_not_allowed,
//     bad_method, precondition_failed, body_source_error, header_spec_error).
//   - kind: the parse failure class (invalid_utf8, line_too_long,
//     too_many_headers, syntax, io).
var (
	// RequestsTotal counts the total number of requests served.
	// Labels: method, path, status
	RequestsTotal *Counter

	// RequestDuration tracks the duration of request handling in seconds.
	// Labels: method, path
	RequestDuration *Histogram

	// RoutesTotal is a gauge of the number of configured routes.
	// Labels: method
	RoutesTotal *Gauge

	// ActiveConnections tracks the number of open client connections.
	ActiveConnections *Gauge

	// OutcomesTotal counts resolution outcomes.
	// Labels: outcome
	OutcomesTotal *Counter

	// MatchMissesTotal counts requests that did not match any route.
	MatchMissesTotal *Counter

	// ParseErrorsTotal counts requests rejected by the wire parser.
	// Labels: kind
	ParseErrorsTotal *Counter

	// AbortedConnectionsTotal counts connections closed without a response.
	AbortedConnectionsTotal *Counter

	// UptimeSeconds is a gauge of the server uptime in seconds.
	UptimeSeconds *Gauge

	// RuntimeCollectorInstance is the Go runtime metrics collector.
	RuntimeCollectorInstance *RuntimeCollector

	// runtimeCollectorStop stops the runtime collector goroutine.
	runtimeCollectorStop func()

	// defaultRegistry is the global metrics registry.
	defaultRegistry *Registry

	// initOnce ensures Init() is only called once.
	initOnce sync.Once
)

// Init initializes the default metrics and returns the registry.
// This function is idempotent and safe to call multiple times.
func Init() *Registry {
	initOnce.Do(func() {
		defaultRegistry = NewRegistry()

		// Request metrics
		RequestsTotal = defaultRegistry.NewCounter(
			"fakerest_requests_total",
			"Total number of requests served",
			"method", "path", "status",
		)

		RequestDuration = defaultRegistry.NewHistogram(
			"fakerest_request_duration_seconds",
			"Duration of request handling in seconds",
			DefaultBuckets,
			"method", "path",
		)

		// Route table metrics
		RoutesTotal = defaultRegistry.NewGauge(
			"fakerest_routes_total",
			"Number of configured routes",
			"method",
		)

		// Connection metrics
		ActiveConnections = defaultRegistry.NewGauge(
			"fakerest_active_connections",
			"Number of open client connections",
		)

		// Resolution metrics
		OutcomesTotal = defaultRegistry.NewCounter(
			"fakerest_outcomes_total",
			"Resolution outcomes by kind",
			"outcome",
		)

		MatchMissesTotal = defaultRegistry.NewCounter(
			"fakerest_match_misses_total",
			"Number of requests that did not match any route",
		)

		// Wire parser metrics
		ParseErrorsTotal = defaultRegistry.NewCounter(
			"fakerest_parse_errors_total",
			"Requests rejected by the wire parser",
			"kind",
		)

		AbortedConnectionsTotal = defaultRegistry.NewCounter(
			"fakerest_aborted_connections_total",
			"Connections closed without a response",
		)

		// Uptime metric
		UptimeSeconds = defaultRegistry.NewGauge(
			"fakerest_uptime_seconds",
			"Server uptime in seconds",
		)

		// Initialize Go runtime metrics collector (passing UptimeSeconds for it to update)
		RuntimeCollectorInstance = NewRuntimeCollector(defaultRegistry, UptimeSeconds)
		// Start collecting runtime metrics every 10 seconds
		runtimeCollectorStop = RuntimeCollectorInstance.StartCollector(10 * time.Second)
	})

	return defaultRegistry
}

// DefaultRegistry returns the default metrics registry.
// Returns nil if Init() has not been called.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Reset resets all default metrics. Useful for testing.
// This also resets the initOnce, allowing Init() to be called again.
func Reset() {
	// Stop runtime collector if running
	if runtimeCollectorStop != nil {
		runtimeCollectorStop()
		runtimeCollectorStop = nil
	}

	initOnce = sync.Once{}
	defaultRegistry = nil
	RequestsTotal = nil
	RequestDuration = nil
	RoutesTotal = nil
	ActiveConnections = nil
	OutcomesTotal = nil
	MatchMissesTotal = nil
	ParseErrorsTotal = nil
	AbortedConnectionsTotal = nil
	UptimeSeconds = nil
	RuntimeCollectorInstance = nil
}
