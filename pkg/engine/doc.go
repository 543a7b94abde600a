// Package engine runs the fakerest server: a TCP accept loop that reads one
// HTTP/1.1 request per connection with internal/httpwire, resolves it against
// an immutable route table with internal/resolver, writes the synthesized
// response, and closes the connection.
//
// A minimal server:
//
//	table := route.NewTable([]route.Route{{
//		Path:       "/ping",
//		Method:     route.MethodGet,
//		ResultType: route.ResultDirect,
//		Result:     "pong",
//	}})
//	srv := engine.NewServer(&config.ServerConfig{Port: 0}, table,
//		engine.WithLogger(logger),
//	)
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	defer srv.Stop(context.Background())
//	// dial srv.Addr() ...
//
// The error mode decides what clients see when a matched route fails its
// preconditions or its body cannot be read: "respond" (default) answers with
// an HTTP error, "abort" closes the connection without a response. Request
// parse and socket errors always close the connection in both modes.
//
// Every connection outcome is recorded to the request log store (unless
// logRequests is disabled) and, when WithMetrics is on, to the default
// metrics registry.
package engine
