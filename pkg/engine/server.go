package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/getfakerest/fakerest/internal/id"
	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/logging"
	"github.com/getfakerest/fakerest/pkg/metrics"
	"github.com/getfakerest/fakerest/pkg/requestlog"
	"github.com/getfakerest/fakerest/pkg/route"
)

// Server accepts raw TCP connections and answers each with one response
// synthesized from the route table. The table is immutable and shared by all
// connection goroutines without locking.
type Server struct {
	cfg     *config.ServerConfig
	table   *route.Table
	baseDir string

	instanceID string
	log        *slog.Logger
	reqLog     requestlog.Store
	metrics    bool

	listener  net.Listener
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRequestLog sets the request history store. Passing one overrides the
// config's logRequests setting.
func WithRequestLog(store requestlog.Store) ServerOption {
	return func(s *Server) {
		s.reqLog = store
	}
}

// WithMetrics enables recording to the default metrics registry. The registry
// is initialized lazily on Start.
func WithMetrics(enabled bool) ServerOption {
	return func(s *Server) {
		s.metrics = enabled
	}
}

// WithBaseDir overrides the base directory for relative file and dl result
// paths. The config's baseDir is used when this option is absent.
func WithBaseDir(dir string) ServerOption {
	return func(s *Server) {
		s.baseDir = dir
	}
}

// NewServer creates a new Server with the given configuration and route table.
// A nil cfg uses DefaultServerConfig. Zero cfg fields keep their natural
// meaning: port 0 binds an ephemeral port, timeout 0 disables the deadline,
// maxConnections 0 means unlimited.
func NewServer(cfg *config.ServerConfig, table *route.Table, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	if table == nil {
		table = route.NewTable(nil)
	}

	s := &Server{
		cfg:        cfg,
		table:      table,
		baseDir:    cfg.BaseDir,
		instanceID: id.ULID(),
		log:        logging.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.reqLog == nil && cfg.LogRequestsEnabled() {
		s.reqLog = requestlog.NewMemoryStore(cfg.MaxLogEntries)
	}

	return s
}

// Start binds the listener and launches the accept loop. It returns once the
// server is listening; Addr reports the bound address.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	if s.metrics {
		metrics.Init()
		s.setRouteGauges()
	}

	s.listener = ln
	s.done = make(chan struct{})
	s.running = true
	s.startTime = time.Now()

	s.log.Info("server started",
		"instance", s.instanceID,
		"addr", ln.Addr().String(),
		"routes", s.table.Len(),
		"errorMode", s.errorMode(),
	)

	s.wg.Add(1)
	go s.acceptLoop(ln)

	return nil
}

// Stop closes the listener and waits for in-flight connections until ctx
// expires. It is safe to call on a server that never started.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	ln := s.listener
	s.listener = nil
	s.running = false
	close(s.done)
	s.mu.Unlock()

	var errs []error
	if err := ln.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close listener: %w", err))
	}

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("drain connections: %w", ctx.Err()))
	}

	s.logMetricsSummary()
	s.log.Info("server stopped", "instance", s.instanceID)

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// acceptLoop hands each accepted connection to its own goroutine. It exits
// when the listener closes.
func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-s.done:
				return
			default:
			}
			s.log.Error("accept failed", "error", err)
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Addr returns the bound listener address, or "" when not running. With port
// 0 this is where the ephemeral port shows up.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

// ID returns the instance identifier assigned at construction.
func (s *Server) ID() string {
	return s.instanceID
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.cfg
}

// Table returns the route table the server answers from.
func (s *Server) Table() *route.Table {
	return s.table
}

// RequestLog returns the request history store, or nil when request logging
// is disabled.
func (s *Server) RequestLog() requestlog.Store {
	return s.reqLog
}

// GetRequestLogs returns request log entries, optionally filtered.
func (s *Server) GetRequestLogs(filter *requestlog.Filter) []*requestlog.Entry {
	if s.reqLog == nil {
		return nil
	}
	return s.reqLog.List(filter)
}

// ClearRequestLogs clears all request log entries.
func (s *Server) ClearRequestLogs() {
	if s.reqLog != nil {
		s.reqLog.Clear()
	}
}

// RequestLogCount returns the number of request log entries.
func (s *Server) RequestLogCount() int {
	if s.reqLog == nil {
		return 0
	}
	return s.reqLog.Count()
}

func (s *Server) errorMode() config.ErrorMode {
	if s.cfg.ErrorMode == config.ErrorModeAbort {
		return config.ErrorModeAbort
	}
	return config.ErrorModeRespond
}

// setRouteGauges publishes the per-method route counts.
func (s *Server) setRouteGauges() {
	if metrics.RoutesTotal == nil {
		return
	}
	counts := make(map[route.Method]int)
	for _, rt := range s.table.Routes() {
		counts[rt.Method]++
	}
	for method, n := range counts {
		if vec, err := metrics.RoutesTotal.WithLabels(string(method)); err == nil {
			vec.Set(float64(n))
		}
	}
}

// logMetricsSummary reports totals at Debug during shutdown.
func (s *Server) logMetricsSummary() {
	if !s.metrics {
		return
	}
	reg := metrics.DefaultRegistry()
	if reg == nil {
		return
	}

	var requests, parseErrors, aborted float64
	for _, sample := range reg.Collect() {
		switch sample.Name {
		case "fakerest_requests_total":
			requests += sample.Value
		case "fakerest_parse_errors_total":
			parseErrors += sample.Value
		case "fakerest_aborted_connections_total":
			aborted += sample.Value
		}
	}
	s.log.Debug("metrics summary",
		"requests_total", requests,
		"parse_errors_total", parseErrors,
		"aborted_connections_total", aborted,
	)
}

// DumpMetrics writes the current exposition text to buf. Returns false when
// metrics are disabled or uninitialized.
func (s *Server) DumpMetrics(buf *bytes.Buffer) bool {
	if !s.metrics {
		return false
	}
	reg := metrics.DefaultRegistry()
	if reg == nil {
		return false
	}
	if _, err := reg.WriteTo(buf); err != nil {
		return false
	}
	return true
}
