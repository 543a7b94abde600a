// Package requestlog provides types and interfaces for capturing and storing
// request/response data for user inspection and debugging.
//
// This package serves fakerest users who need to inspect what requests came
// in, which routes matched, and what responses were sent. It is distinct from
// operational logging (which uses log/slog for platform debugging).
//
// # Core Types
//
// Entry is the central type representing a captured request/response pair.
// Outcome records how resolution ended (matched, no_route, bad_method, and
// so on), and MatchedPath names the route that was selected, if any.
//
// # Store Interface
//
// Store defines the interface for request history storage, supporting:
//   - Recording new entries
//   - Querying by ID or with filters
//   - Subscribing to new entries in real-time
//   - Clearing history
//
// # Usage
//
// The server creates Entry instances and passes them to a Store
// implementation. Tests and tooling query the Store to display request
// history.
//
//	store := requestlog.NewMemoryStore(1000)
//	entry := &requestlog.Entry{
//	    Method: "GET",
//	    Path:   "/api/users",
//	    // ...
//	}
//	store.Log(entry)
//
// # Package Design
//
// This is a leaf package with no dependencies on the server internals,
// allowing it to be imported by any package without creating import cycles.
package requestlog
