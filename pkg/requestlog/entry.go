package requestlog

import "time"

// Outcome constants mirroring how the resolver classified a request.
const (
	OutcomeMatched            = "matched"
	OutcomeNoRoute            = "no_route"
	OutcomeMethodNotAllowed   = "method_not_allowed"
	OutcomeBadMethod          = "bad_method"
	OutcomePreconditionFailed = "precondition_failed"
	OutcomeBodySourceError    = "body_source_error"
	OutcomeHeaderSpecError    = "header_spec_error"
	OutcomeParseError         = "parse_error"
)

// Entry captures complete details of a request/response for debugging and inspection.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// ConnectionID identifies the TCP connection the request arrived on.
	ConnectionID string `json:"connectionId,omitempty"`

	// RemoteAddr is the client IP address.
	RemoteAddr string `json:"remoteAddr"`

	// Method is the HTTP method token as received, valid or not.
	Method string `json:"method"`

	// Path is the request URI with any query string stripped.
	Path string `json:"path"`

	// Query holds the parsed query parameters.
	Query map[string]string `json:"query,omitempty"`

	// Headers are the request headers as parsed (case-sensitive keys,
	// last occurrence wins).
	Headers map[string]string `json:"headers,omitempty"`

	// MatchedPath is the path of the route that was selected (empty if none).
	MatchedPath string `json:"matchedPath,omitempty"`

	// Outcome records how resolution ended (matched, no_route, ...).
	Outcome string `json:"outcome"`

	// ResponseStatus is the status code returned.
	ResponseStatus int `json:"responseStatus"`

	// ResponseBody is the response body content (truncated if > 10KB).
	ResponseBody string `json:"responseBody,omitempty"`

	// ResponseSize is the original response body size in bytes.
	ResponseSize int `json:"responseSize"`

	// DurationMs is the request processing time in milliseconds.
	DurationMs int `json:"durationMs"`

	// Error contains the error message if the request failed.
	Error string `json:"error,omitempty"`
}
