package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/engine"
	"github.com/getfakerest/fakerest/pkg/logging"
	"github.com/getfakerest/fakerest/pkg/requestlog"
	"github.com/getfakerest/fakerest/pkg/route"
)

// Server is a test helper for running fakerest in tests. Routes are
// configured through the fluent builder, then Start serves them on an
// ephemeral port.
type Server struct {
	t       testing.TB
	mu      sync.Mutex
	routes  []route.Route
	srv     *engine.Server
	started bool
	baseURL string
}

// New creates a fakerest server for testing. It is stopped automatically
// when the test completes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{t: t}
	t.Cleanup(s.Stop)
	return s
}

// Start builds the route table and starts the server. It returns the base
// URL, e.g. "http://127.0.0.1:49201". Calling Start twice returns the same
// URL.
func (s *Server) Start() string {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return s.baseURL
	}

	logRequests := true
	cfg := &config.ServerConfig{
		Host:          "127.0.0.1",
		Port:          0,
		LogRequests:   &logRequests,
		MaxLogEntries: 1000,
	}

	s.srv = engine.NewServer(cfg, route.NewTable(s.routes), engine.WithLogger(logging.Nop()))
	if err := s.srv.Start(); err != nil {
		s.t.Fatalf("failed to start fakerest server: %v", err)
	}

	s.started = true
	s.baseURL = "http://" + s.srv.Addr()
	return s.baseURL
}

// Stop shuts the server down. Safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.srv.Stop(ctx)
	s.started = false
}

// URL returns the base URL of the server, or empty if not started.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// add validates and appends a built route. The table is immutable once the
// server is serving, so late adds fail the test instead of silently doing
// nothing.
func (s *Server) add(rt route.Route) {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.t.Fatalf("cannot add route %s %s after Start: the route table is fixed once serving", rt.Method, rt.Path)
	}
	if err := rt.Validate(); err != nil {
		s.t.Fatalf("invalid route %s %s: %v", rt.Method, rt.Path, err)
	}
	s.routes = append(s.routes, rt)
}

// Requests returns the request log entries recorded so far, oldest first.
// The store lists newest first for log-tailing; tests read scenarios in the
// order they performed them, so the slice is reversed here.
func (s *Server) Requests() []*requestlog.Entry {
	s.t.Helper()
	if s.srv == nil {
		return nil
	}
	entries := s.srv.GetRequestLogs(nil)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// ClearLog drops all recorded requests. Useful between scenarios that share
// one server.
func (s *Server) ClearLog() {
	if s.srv != nil {
		s.srv.ClearRequestLogs()
	}
}

// AssertCalled asserts that a method/path combination was requested at least once.
func (s *Server) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	count := s.countCalls(method, path)
	if count == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that a method/path combination was requested exactly n times.
func (s *Server) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	count := s.countCalls(method, path)
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that a method/path combination was never requested.
func (s *Server) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	count := s.countCalls(method, path)
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

func (s *Server) countCalls(method, path string) int {
	if s.srv == nil {
		return 0
	}
	count := 0
	for _, e := range s.srv.GetRequestLogs(nil) {
		if e.Method == method && e.Path == path {
			count++
		}
	}
	return count
}
