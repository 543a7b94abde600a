package engine

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/getfakerest/fakerest/internal/httpwire"
	"github.com/getfakerest/fakerest/internal/resolver"
	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/metrics"
	"github.com/getfakerest/fakerest/pkg/requestlog"
	"github.com/getfakerest/fakerest/pkg/util"
)

// handleConn serves exactly one request on conn: read, resolve, write, close.
// Keep-alive is out of scope, so the connection always closes on return.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	connID := uuid.NewString()
	start := time.Now()

	if s.metrics && metrics.ActiveConnections != nil {
		_ = metrics.ActiveConnections.Inc()
		defer func() { _ = metrics.ActiveConnections.Dec() }()
	}

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(time.Duration(s.cfg.ReadTimeout) * time.Second))
	}

	br := bufio.NewReader(conn)
	req, err := httpwire.ReadRequest(br, httpwire.Limits{
		MaxLineBytes: s.cfg.MaxLineBytes,
		MaxHeaders:   s.cfg.MaxHeaderCount,
	})
	if err != nil {
		s.finishReadFailure(conn, connID, start, err)
		return
	}

	outcome := resolver.Resolve(req, s.table, s.baseDir)

	// Failure outcomes carry no response; the error mode decides whether the
	// client sees an HTTP error or a closed connection.
	resp := outcome.Response
	aborted := false
	if outcome.Failed() {
		if s.errorMode() == config.ErrorModeAbort {
			aborted = true
		} else {
			resp = resolver.ErrorResponse(outcome)
		}
	}

	var wireErr error
	if resp != nil {
		if s.cfg.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(time.Duration(s.cfg.WriteTimeout) * time.Second))
		}
		wireErr = httpwire.WriteResponse(conn, resp)
	}

	duration := time.Since(start)
	s.logConnOutcome(conn, connID, req, outcome, resp, duration, aborted, wireErr)
	s.recordOutcomeMetrics(req, outcome, resp, duration, aborted)
}

// finishReadFailure handles a connection whose request never parsed. A client
// that connects and closes without sending anything (plain EOF) is not worth
// an audit trail; everything else is.
func (s *Server) finishReadFailure(conn net.Conn, connID string, start time.Time, err error) {
	remote := conn.RemoteAddr().String()

	if errors.Is(err, io.EOF) {
		s.log.Debug("connection closed before a complete request", "remote", remote, "connection", connID)
		return
	}

	kind := parseErrorKind(err)
	if httpwire.IsParseError(err) {
		s.log.Warn("request parse failed", "remote", remote, "connection", connID, "kind", kind, "error", err)
	} else {
		s.log.Warn("request read failed", "remote", remote, "connection", connID, "error", err)
	}

	if s.metrics {
		if metrics.ParseErrorsTotal != nil {
			if vec, lerr := metrics.ParseErrorsTotal.WithLabels(kind); lerr == nil {
				_ = vec.Inc()
			}
		}
		if metrics.AbortedConnectionsTotal != nil {
			_ = metrics.AbortedConnectionsTotal.Inc()
		}
	}

	// Only genuine parse failures leave a request log entry; transport errors
	// carry no request data worth keeping.
	if s.reqLog != nil && httpwire.IsParseError(err) {
		s.reqLog.Log(&requestlog.Entry{
			ConnectionID: connID,
			RemoteAddr:   remote,
			Outcome:      requestlog.OutcomeParseError,
			DurationMs:   int(time.Since(start).Milliseconds()),
			Error:        err.Error(),
		})
	}
}

// logConnOutcome emits the operational log line and the request log entry for
// a parsed request.
func (s *Server) logConnOutcome(conn net.Conn, connID string, req *httpwire.Request, outcome resolver.Outcome, resp *httpwire.Response, duration time.Duration, aborted bool, wireErr error) {
	remote := conn.RemoteAddr().String()
	status := 0
	size := 0
	if resp != nil {
		status = resp.Status.Code
		size = len(resp.Body)
	}

	switch {
	case aborted:
		s.log.Warn("connection aborted",
			"remote", remote,
			"connection", connID,
			"method", string(req.Method),
			"path", req.URI,
			"outcome", outcome.Kind.String(),
			"error", outcome.Err,
		)
	case wireErr != nil:
		s.log.Warn("response write failed",
			"remote", remote,
			"connection", connID,
			"method", string(req.Method),
			"path", req.URI,
			"status", status,
			"error", wireErr,
		)
	default:
		s.log.Debug("request served",
			"remote", remote,
			"connection", connID,
			"method", string(req.Method),
			"path", req.URI,
			"outcome", outcome.Kind.String(),
			"status", status,
			"bytes", size,
			"duration", duration,
		)
	}

	if s.reqLog == nil {
		return
	}

	entry := &requestlog.Entry{
		ConnectionID: connID,
		RemoteAddr:   remote,
		Method:       string(req.Method),
		Path:         req.URI,
		Query:        req.Query,
		Headers:      req.Headers,
		Outcome:      outcome.Kind.String(),
		DurationMs:   int(duration.Milliseconds()),
	}
	if outcome.Route != nil {
		entry.MatchedPath = outcome.Route.Path
	}
	if resp != nil {
		entry.ResponseStatus = status
		entry.ResponseSize = size
		entry.ResponseBody = util.TruncateBody(string(resp.Body), 0)
	}
	if outcome.Err != nil {
		entry.Error = outcome.Err.Error()
	}
	s.reqLog.Log(entry)
}

// recordOutcomeMetrics updates the default registry for a parsed request.
// The path label uses the matched route's path when there is one; requests
// that matched nothing share the "unmatched" label, so cardinality stays
// bounded by the config rather than by client input.
func (s *Server) recordOutcomeMetrics(req *httpwire.Request, outcome resolver.Outcome, resp *httpwire.Response, duration time.Duration, aborted bool) {
	if !s.metrics {
		return
	}

	method := string(req.Method)
	path := "unmatched"
	if outcome.Route != nil {
		path = outcome.Route.Path
	}

	if resp != nil && metrics.RequestsTotal != nil {
		if vec, err := metrics.RequestsTotal.WithLabels(method, path, strconv.Itoa(resp.Status.Code)); err == nil {
			_ = vec.Inc()
		}
	}
	if metrics.RequestDuration != nil {
		if vec, err := metrics.RequestDuration.WithLabels(method, path); err == nil {
			vec.Observe(duration.Seconds())
		}
	}
	if metrics.OutcomesTotal != nil {
		if vec, err := metrics.OutcomesTotal.WithLabels(outcome.Kind.String()); err == nil {
			_ = vec.Inc()
		}
	}
	if outcome.Kind == resolver.KindNoRoute && metrics.MatchMissesTotal != nil {
		_ = metrics.MatchMissesTotal.Inc()
	}
	if aborted && metrics.AbortedConnectionsTotal != nil {
		_ = metrics.AbortedConnectionsTotal.Inc()
	}
}

// parseErrorKind maps a read failure to its metrics label.
func parseErrorKind(err error) string {
	switch {
	case errors.Is(err, httpwire.ErrInvalidUTF8):
		return "invalid_utf8"
	case errors.Is(err, httpwire.ErrLineTooLong):
		return "line_too_long"
	case errors.Is(err, httpwire.ErrTooManyHeaders):
		return "too_many_headers"
	case errors.Is(err, httpwire.ErrMissingDelimiter):
		return "syntax"
	default:
		return "io"
	}
}
