package performance

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/getfakerest/fakerest/internal/httpwire"
	"github.com/getfakerest/fakerest/internal/resolver"
	"github.com/getfakerest/fakerest/pkg/route"
)

// Wire-level micro benchmarks: the request parser, the response serializer
// and the resolver, measured without any socket in the way.

func BenchmarkWireParseRequest(b *testing.B) {
	raw := "GET /api/users?limit=10&page=1 HTTP/1.1\r\n" +
		"Host: localhost:4280\r\n" +
		"User-Agent: bench/1.0\r\n" +
		"Accept: application/json\r\n" +
		"Authorization: Bearer token-value\r\n" +
		"\r\n"

	sr := strings.NewReader(raw)
	br := bufio.NewReader(sr)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sr.Reset(raw)
		br.Reset(sr)
		if _, err := httpwire.ReadRequest(br, httpwire.Limits{}); err != nil {
			b.Fatalf("parse failed: %v", err)
		}
	}
}

func BenchmarkWireWriteResponse(b *testing.B) {
	resp := &httpwire.Response{
		Status: httpwire.StatusFromCode(200),
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-Request-Id": "bench",
		},
		Body: []byte(`{"id": 1, "name": "resource-1"}`),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := httpwire.WriteResponse(io.Discard, resp); err != nil {
			b.Fatalf("write failed: %v", err)
		}
	}
}

func BenchmarkWireResolve(b *testing.B) {
	routes := make([]route.Route, 100)
	for i := range routes {
		routes[i] = route.Route{
			Path:       fmt.Sprintf("/api/resource/%d", i),
			Method:     route.MethodGet,
			StatusCode: 200,
			ResultType: route.ResultDirect,
			Result:     "found",
		}
	}
	table := route.NewTable(routes)

	hit := &httpwire.Request{
		Method:  route.MethodGet,
		URI:     "/api/resource/99",
		Version: "HTTP/1.1",
		Headers: map[string]string{"Host": "localhost"},
		Query:   map[string]string{},
	}
	miss := &httpwire.Request{
		Method:  route.MethodGet,
		URI:     "/api/absent",
		Version: "HTTP/1.1",
		Headers: map[string]string{"Host": "localhost"},
		Query:   map[string]string{},
	}

	b.Run("hit", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			out := resolver.Resolve(hit, table, "")
			if out.Kind != resolver.KindMatched {
				b.Fatalf("expected match, got %s", out.Kind)
			}
		}
	})

	b.Run("miss", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			out := resolver.Resolve(miss, table, "")
			if out.Kind != resolver.KindNoRoute {
				b.Fatalf("expected no_route, got %s", out.Kind)
			}
		}
	})
}
