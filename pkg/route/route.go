// Package route defines the declarative route table a fakerest server answers
// from: one Route per configured path, collected into an immutable Table that is
// built once at startup and shared read-only by every connection.
package route

import (
	"fmt"
	"strings"
)

// Method is an HTTP method token as it appears in configuration and on the wire.
// The recognized set is closed; note OPTION (singular), which is the token the
// config dialect has always used.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodOption Method = "OPTION"
	MethodDelete Method = "DELETE"
)

// Methods returns the recognized method tokens in a stable order.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodOption, MethodDelete}
}

// Valid reports whether m is one of the recognized method tokens.
// Matching is exact: method tokens are case-sensitive on the wire.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodOption, MethodDelete:
		return true
	}
	return false
}

// ResultType selects how a Route's Result field is turned into a response body.
type ResultType string

const (
	// ResultDirect serves the Result string verbatim as the body.
	ResultDirect ResultType = "direct"
	// ResultFile reads the file at Result and serves its contents as UTF-8 text.
	ResultFile ResultType = "file"
	// ResultDownload reads the file at Result as raw bytes and serves it with
	// download headers (Content-Type by extension, attachment disposition).
	ResultDownload ResultType = "dl"
)

// Known reports whether r is one of the recognized result types.
// Unknown tags are not an error: they resolve to an empty body.
func (r ResultType) Known() bool {
	switch r {
	case ResultDirect, ResultFile, ResultDownload:
		return true
	}
	return false
}

// Route is a single configured rule mapping an exact request path (and method)
// to a response template.
type Route struct {
	// Path is matched byte-for-byte against the request URI. No wildcards.
	Path string `json:"path" yaml:"path"`

	// Method the request must use once the path has matched.
	Method Method `json:"method" yaml:"method"`

	// Headers lists header names that must be present on the request
	// (case-sensitive key match) for the route to be honored.
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Queries lists query-parameter names that must be present on the request.
	Queries []string `json:"queries,omitempty" yaml:"queries,omitempty"`

	// StatusCode of the response. Zero means 200. Codes outside the registry
	// fall back to 200/"OK".
	StatusCode int `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`

	// ResultType selects the body source.
	ResultType ResultType `json:"resultType" yaml:"resultType"`

	// Result is literal body text for "direct", or a filesystem path for
	// "file" and "dl".
	Result string `json:"result,omitempty" yaml:"result,omitempty"`

	// ResultHeaders are extra "Key: Value" response headers. They are applied
	// last and overwrite anything the resolver set, Content-Type and
	// Content-Length included.
	ResultHeaders []string `json:"resultHeaders,omitempty" yaml:"resultHeaders,omitempty"`
}

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks that the route is well-formed enough to serve. An unknown
// ResultType is deliberately not rejected here; the resolver answers it with an
// empty body.
func (r *Route) Validate() error {
	if r.Path == "" {
		return &ValidationError{Field: "path", Message: "path is required"}
	}
	if !strings.HasPrefix(r.Path, "/") {
		return &ValidationError{Field: "path", Message: fmt.Sprintf("path %q must start with /", r.Path)}
	}
	if r.Method == "" {
		return &ValidationError{Field: "method", Message: "method is required"}
	}
	if !r.Method.Valid() {
		return &ValidationError{Field: "method", Message: fmt.Sprintf("unknown method %q", r.Method)}
	}
	if (r.ResultType == ResultFile || r.ResultType == ResultDownload) && r.Result == "" {
		return &ValidationError{Field: "result", Message: fmt.Sprintf("result path is required for resultType %q", r.ResultType)}
	}
	for i, h := range r.ResultHeaders {
		if !strings.Contains(h, ":") {
			return &ValidationError{
				Field:   fmt.Sprintf("resultHeaders[%d]", i),
				Message: fmt.Sprintf("%q is missing the ':' separator", h),
			}
		}
	}
	return nil
}

// Table is an ordered, immutable collection of routes. It is safe for
// concurrent use without locking because it is never mutated after NewTable.
type Table struct {
	routes []Route
}

// NewTable builds a table from routes, preserving order. The slice is copied;
// the caller may reuse it.
func NewTable(routes []Route) *Table {
	t := &Table{routes: make([]Route, len(routes))}
	copy(t.routes, routes)
	return t
}

// FindPath returns the first route whose Path equals uri, in table order.
// First match wins regardless of method or precondition differences between
// entries sharing a path. The returned route is read-only.
func (t *Table) FindPath(uri string) (*Route, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.routes {
		if t.routes[i].Path == uri {
			return &t.routes[i], true
		}
	}
	return nil, false
}

// Len returns the number of routes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Routes returns a copy of the table's routes in order.
func (t *Table) Routes() []Route {
	if t == nil {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
