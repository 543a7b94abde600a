// Package testing provides a testing SDK for using fakerest in Go tests.
//
// It runs a real fakerest server on an ephemeral port, with a fluent builder
// for the route table and assertions backed by the server's request log.
//
// # Basic Usage
//
// Configure routes, start the server, and point the code under test at it:
//
//	func TestMyAPI(t *testing.T) {
//	    fake := testing.New(t)
//
//	    fake.Route("GET", "/users/123").
//	        WithStatus(200).
//	        WithJSON(map[string]string{"id": "123", "name": "Test User"}).
//	        Reply()
//
//	    url := fake.Start()
//
//	    resp, err := http.Get(url + "/users/123")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer resp.Body.Close()
//
//	    fake.AssertCalled(t, "GET", "/users/123")
//	}
//
// The server is stopped automatically when the test finishes.
//
// # Route Matching
//
// Paths match byte-for-byte, first match wins, and each path needs its own
// entry. Preconditions require the presence of a header or query parameter:
//
//	fake.Route("GET", "/api/secure").
//	    RequireHeader("Authorization").
//	    WithStatus(200).
//	    Reply()
//
//	fake.Route("GET", "/search").
//	    RequireQuery("q").
//	    WithJSON(map[string]any{"results": []string{}}).
//	    Reply()
//
// # Response Shapes
//
//	// Status and string body together
//	fake.Route("POST", "/api/items").RespondWith(201, `{"created": true}`).Reply()
//
//	// JSON with Content-Type set
//	fake.Route("GET", "/api/user").RespondJSON(User{ID: "123"}).Reply()
//
//	// Serve a file's contents, or a download with attachment headers
//	fake.Route("GET", "/report").WithFile("testdata/report.txt").Reply()
//	fake.Route("GET", "/archive").WithDownload("testdata/data.bin").Reply()
//
// # Assertions
//
// The request log records every request the server saw:
//
//	fake.AssertCalled(t, "GET", "/api/endpoint")
//	fake.AssertCalledTimes(t, "POST", "/api/create", 3)
//	fake.AssertNotCalled(t, "DELETE", "/api/item")
//
//	for _, e := range fake.Requests() {
//	    testing.AssertRequestHeader(t, e, "Content-Type", "application/json")
//	}
//
// The route table is fixed once Start is called; configure every route
// first. Use ClearLog between scenarios that share a server.
package testing
