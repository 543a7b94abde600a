package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/engine"
	"github.com/getfakerest/fakerest/pkg/logging"
	"github.com/getfakerest/fakerest/pkg/route"
)

// matchingBundle groups the server and its address for matching tests
type matchingBundle struct {
	Server *engine.Server
	Addr   string
}

func setupMatchingServer(t *testing.T, routes []route.Route, mode config.ErrorMode) *matchingBundle {
	t.Helper()

	cfg := &config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         GetFreePortSafe(),
		ReadTimeout:  30,
		WriteTimeout: 30,
		ErrorMode:    mode,
	}
	return setupServerWithConfig(t, cfg, routes)
}

func setupServerWithConfig(t *testing.T, cfg *config.ServerConfig, routes []route.Route) *matchingBundle {
	t.Helper()

	srv := engine.NewServer(cfg, route.NewTable(routes), engine.WithLogger(logging.Nop()))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	return &matchingBundle{Server: srv, Addr: srv.Addr()}
}

// Resolution order over a live connection: method token, then path, then
// method, each short-circuiting the next.
func TestMatchingResolutionOrder(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/api/users", Method: route.MethodGet, StatusCode: 200, ResultType: route.ResultDirect, Result: "users list"},
	}, config.ErrorModeRespond)

	t.Run("unknown method token", func(t *testing.T) {
		resp, err := rawExchange(bundle.Addr, "FETCH /api/users HTTP/1.1\r\nHost: test\r\n\r\n")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400"), "unexpected response:\n%s", resp)
		assert.Contains(t, resp, "Bad Request")
	})

	t.Run("plural OPTIONS is an unknown token", func(t *testing.T) {
		resp, err := rawExchange(bundle.Addr, "OPTIONS /api/users HTTP/1.1\r\nHost: test\r\n\r\n")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400"), "unexpected response:\n%s", resp)
	})

	t.Run("unknown path", func(t *testing.T) {
		resp, err := httpGET(bundle.Addr, "/api/missing")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 404"), "unexpected response:\n%s", resp)
		assert.Contains(t, resp, "Path not found")
	})

	t.Run("method mismatch on a known path", func(t *testing.T) {
		resp, err := rawExchange(bundle.Addr, "POST /api/users HTTP/1.1\r\nHost: test\r\n\r\n")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 405"), "unexpected response:\n%s", resp)
		assert.Contains(t, resp, "Method Not Allowed")
	})

	t.Run("match", func(t *testing.T) {
		resp, err := httpGET(bundle.Addr, "/api/users")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK"), "unexpected response:\n%s", resp)
		assert.True(t, strings.HasSuffix(resp, "users list"), "unexpected response:\n%s", resp)
	})
}

// The path scan stops at the first entry whose path matches, whatever its
// method. A second entry on the same path is unreachable.
func TestMatchingFirstMatchWinsOnPath(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/dup", Method: route.MethodGet, StatusCode: 200, ResultType: route.ResultDirect, Result: "first"},
		{Path: "/dup", Method: route.MethodPost, StatusCode: 201, ResultType: route.ResultDirect, Result: "second"},
	}, config.ErrorModeRespond)

	resp, err := httpGET(bundle.Addr, "/dup")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp, "first"), "unexpected response:\n%s", resp)

	// The POST entry never gets a chance; the GET entry answers 405.
	resp, err = rawExchange(bundle.Addr, "POST /dup HTTP/1.1\r\nHost: test\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 405"), "unexpected response:\n%s", resp)
}

func TestMatchingRequiredHeader(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/secure", Method: route.MethodGet, Headers: []string{"X-API-Key"}, StatusCode: 200, ResultType: route.ResultDirect, Result: "granted"},
	}, config.ErrorModeRespond)

	resp, err := httpGET(bundle.Addr, "/secure")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400"), "unexpected response:\n%s", resp)
	assert.Contains(t, resp, `required header missing: "X-API-Key"`)

	resp, err = rawExchange(bundle.Addr, "GET /secure HTTP/1.1\r\nHost: test\r\nX-API-Key: abc123\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
	assert.True(t, strings.HasSuffix(resp, "granted"), "unexpected response:\n%s", resp)
}

func TestMatchingRequiredQuery(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/search", Method: route.MethodGet, Queries: []string{"q"}, StatusCode: 200, ResultType: route.ResultDirect, Result: "results"},
	}, config.ErrorModeRespond)

	resp, err := httpGET(bundle.Addr, "/search")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400"), "unexpected response:\n%s", resp)
	assert.Contains(t, resp, `required query parameter missing: "q"`)

	resp, err = httpGET(bundle.Addr, "/search?q=fakerest")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
}

// In abort mode a failed precondition closes the connection without writing
// anything.
func TestMatchingAbortMode(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/secure", Method: route.MethodGet, Headers: []string{"X-API-Key"}, StatusCode: 200, ResultType: route.ResultDirect, Result: "granted"},
	}, config.ErrorModeAbort)

	resp, err := httpGET(bundle.Addr, "/secure")
	require.NoError(t, err)
	assert.Empty(t, resp, "abort mode should close without a response, got:\n%s", resp)

	// Well-formed requests still answer normally.
	resp, err = rawExchange(bundle.Addr, "GET /secure HTTP/1.1\r\nHost: test\r\nX-API-Key: abc123\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
}

// The singular OPTION token is part of the method set.
func TestMatchingOptionMethod(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/cors", Method: route.MethodOption, StatusCode: 200, ResultType: route.ResultDirect, Result: "allowed"},
	}, config.ErrorModeRespond)

	resp, err := rawExchange(bundle.Addr, "OPTION /cors HTTP/1.1\r\nHost: test\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
	assert.True(t, strings.HasSuffix(resp, "allowed"), "unexpected response:\n%s", resp)
}

// Status codes outside the response registry degrade to 200 OK.
func TestMatchingUnknownStatusFallsBackTo200(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/odd", Method: route.MethodGet, StatusCode: 999, ResultType: route.ResultDirect, Result: "still here"},
	}, config.ErrorModeRespond)

	resp, err := httpGET(bundle.Addr, "/odd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK"), "unexpected response:\n%s", resp)
	assert.True(t, strings.HasSuffix(resp, "still here"), "unexpected response:\n%s", resp)
}

// Each response carries Content-Length and closes the connection; nothing
// advertises keep-alive.
func TestMatchingSingleExchangePerConnection(t *testing.T) {
	bundle := setupMatchingServer(t, []route.Route{
		{Path: "/one", Method: route.MethodGet, StatusCode: 200, ResultType: route.ResultDirect, Result: "one"},
	}, config.ErrorModeRespond)

	resp, err := httpGET(bundle.Addr, "/one")
	require.NoError(t, err)
	assert.Contains(t, resp, fmt.Sprintf("Content-Length: %d\r\n", len("one")))
	assert.NotContains(t, resp, "Connection:")
}
