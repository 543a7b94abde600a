package testing

import (
	"encoding/json"

	"github.com/getfakerest/fakerest/pkg/route"
)

// RouteBuilder builds one route using a fluent API. Reply registers it with
// the server.
type RouteBuilder struct {
	server *Server
	rt     route.Route
}

// Route starts building a route for a method and an exact path. The default
// is a 200 response with an empty direct body.
func (s *Server) Route(method, path string) *RouteBuilder {
	return &RouteBuilder{
		server: s,
		rt: route.Route{
			Path:       path,
			Method:     route.Method(method),
			StatusCode: 200,
			ResultType: route.ResultDirect,
		},
	}
}

// WithStatus sets the response status code. Codes outside the response
// registry degrade to 200 at serve time, matching server behavior.
func (b *RouteBuilder) WithStatus(code int) *RouteBuilder {
	b.rt.StatusCode = code
	return b
}

// WithBody sets a literal response body.
func (b *RouteBuilder) WithBody(body string) *RouteBuilder {
	b.rt.ResultType = route.ResultDirect
	b.rt.Result = body
	return b
}

// WithJSON marshals v as the response body and sets the JSON Content-Type.
func (b *RouteBuilder) WithJSON(v any) *RouteBuilder {
	b.server.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		b.server.t.Fatalf("failed to marshal JSON body: %v", err)
		return b
	}
	b.rt.ResultType = route.ResultDirect
	b.rt.Result = string(data)
	return b.WithHeader("Content-Type", "application/json")
}

// WithFile serves the contents of the file at path as the response body.
// The file is read per request, relative paths resolve against the test's
// working directory.
func (b *RouteBuilder) WithFile(path string) *RouteBuilder {
	b.rt.ResultType = route.ResultFile
	b.rt.Result = path
	return b
}

// WithDownload serves the file at path as a download, with a Content-Type
// from the extension and an attachment disposition.
func (b *RouteBuilder) WithDownload(path string) *RouteBuilder {
	b.rt.ResultType = route.ResultDownload
	b.rt.Result = path
	return b
}

// WithHeader adds a response header. Later values win over anything the
// server would set, Content-Type and Content-Length included.
func (b *RouteBuilder) WithHeader(name, value string) *RouteBuilder {
	b.rt.ResultHeaders = append(b.rt.ResultHeaders, name+": "+value)
	return b
}

// RequireHeader makes the route match only requests carrying the named
// header. Requests without it get a 400 naming the missing header.
func (b *RouteBuilder) RequireHeader(name string) *RouteBuilder {
	b.rt.Headers = append(b.rt.Headers, name)
	return b
}

// RequireQuery makes the route match only requests carrying the named query
// parameter.
func (b *RouteBuilder) RequireQuery(name string) *RouteBuilder {
	b.rt.Queries = append(b.rt.Queries, name)
	return b
}

// RespondWith is a shorthand for setting status and body together.
func (b *RouteBuilder) RespondWith(status int, body string) *RouteBuilder {
	return b.WithStatus(status).WithBody(body)
}

// RespondJSON is a shorthand for a JSON response with status 200.
func (b *RouteBuilder) RespondJSON(v any) *RouteBuilder {
	return b.WithStatus(200).WithJSON(v)
}

// Reply registers the built route with the server.
func (b *RouteBuilder) Reply() {
	b.server.add(b.rt)
}
