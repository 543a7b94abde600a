// Package resolver matches a parsed request against the route table and
// materializes the response: status from the registry, body from the entry's
// result source, headers assembled in a fixed precedence order. Every path
// through Resolve ends in a tagged Outcome; the connection layer decides
// whether failures answer with an HTTP error or abort the connection.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/getfakerest/fakerest/internal/httpwire"
	"github.com/getfakerest/fakerest/pkg/route"
)

// Failure sentinels carried on Outcome.Err.
var (
	// ErrMissingHeader means a route's required header was absent.
	ErrMissingHeader = errors.New("required header missing")

	// ErrMissingQuery means a route's required query parameter was absent.
	ErrMissingQuery = errors.New("required query parameter missing")

	// ErrBodyFile means a file/dl result path is missing or not a regular file.
	ErrBodyFile = errors.New("body file is not a regular file")

	// ErrBodyNotText means a "file" result's contents were not valid UTF-8.
	// Only "dl" serves raw bytes.
	ErrBodyNotText = errors.New("body file is not valid UTF-8 text")

	// ErrHeaderSpec means a configured result header lacks the ':' separator.
	ErrHeaderSpec = errors.New("malformed result header")
)

// Kind tags the possible results of Resolve.
type Kind int

const (
	// KindMatched is the normal path: a route matched and produced a response.
	KindMatched Kind = iota
	// KindNoRoute means no entry's path equals the request URI (404).
	KindNoRoute
	// KindMethodNotAllowed means the path matched but the method differs (405).
	KindMethodNotAllowed
	// KindBadMethod means the request's method token is not recognized (400).
	KindBadMethod
	// KindPreconditionFailed means a required header or query was missing.
	KindPreconditionFailed
	// KindBodySourceError means the entry's body could not be materialized.
	KindBodySourceError
	// KindHeaderSpecError means a configured result header could not be parsed.
	KindHeaderSpecError
)

// String returns a stable lowercase tag, used as a metrics label and in logs.
func (k Kind) String() string {
	switch k {
	case KindMatched:
		return "matched"
	case KindNoRoute:
		return "no_route"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindBadMethod:
		return "bad_method"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindBodySourceError:
		return "body_source_error"
	case KindHeaderSpecError:
		return "header_spec_error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of resolving one request.
type Outcome struct {
	Kind Kind

	// Response is ready to serialize for Matched, NoRoute, MethodNotAllowed
	// and BadMethod. It is nil for the failure kinds; ErrorResponse can build
	// one when the server runs in respond mode.
	Response *httpwire.Response

	// Route is the entry whose path matched, when one did.
	Route *route.Route

	// Err is set for PreconditionFailed, BodySourceError and HeaderSpecError,
	// wrapping one of the package sentinels.
	Err error
}

// Failed reports whether the outcome carries an error instead of a ready
// response.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Resolve runs the matching algorithm. It never panics and touches nothing
// but the (immutable) table and, for file-backed bodies, the filesystem.
// Relative result paths are joined to baseDir; an empty baseDir means the
// process working directory.
func Resolve(req *httpwire.Request, table *route.Table, baseDir string) Outcome {
	// Policy for unrecognized method tokens: reject, don't guess.
	if !req.Method.Valid() {
		return Outcome{Kind: KindBadMethod, Response: fixedResponse(400, "Bad Request")}
	}

	entry, ok := table.FindPath(req.URI)
	if !ok {
		return Outcome{Kind: KindNoRoute, Response: fixedResponse(404, "Path not found")}
	}

	// Method check short-circuits before preconditions.
	if entry.Method != req.Method {
		return Outcome{Kind: KindMethodNotAllowed, Route: entry, Response: fixedResponse(405, "Method Not Allowed")}
	}

	for _, name := range entry.Headers {
		if _, ok := req.Headers[name]; !ok {
			return Outcome{
				Kind:  KindPreconditionFailed,
				Route: entry,
				Err:   fmt.Errorf("%w: %q", ErrMissingHeader, name),
			}
		}
	}
	for _, name := range entry.Queries {
		if _, ok := req.Query[name]; !ok {
			return Outcome{
				Kind:  KindPreconditionFailed,
				Route: entry,
				Err:   fmt.Errorf("%w: %q", ErrMissingQuery, name),
			}
		}
	}

	status := httpwire.StatusFromCode(200)
	if entry.StatusCode != 0 {
		status = httpwire.StatusFromCode(entry.StatusCode)
	}

	headers := make(map[string]string)
	body, err := resolveBody(entry, baseDir, headers)
	if err != nil {
		return Outcome{Kind: KindBodySourceError, Route: entry, Err: err}
	}

	// Assembly order matters: dl-derived headers are already in the map;
	// Content-Length and Host come next; config-declared headers go last so
	// they win every conflict.
	headers["Content-Length"] = strconv.Itoa(len(body))
	if host, ok := req.Headers["Host"]; ok {
		headers["Host"] = host
	}
	for _, spec := range entry.ResultHeaders {
		key, value, err := httpwire.SplitPair(spec, ':')
		if err != nil {
			return Outcome{
				Kind:  KindHeaderSpecError,
				Route: entry,
				Err:   fmt.Errorf("%w: %q", ErrHeaderSpec, spec),
			}
		}
		headers[key] = value
	}

	return Outcome{
		Kind:  KindMatched,
		Route: entry,
		Response: &httpwire.Response{
			Status:  status,
			Headers: headers,
			Body:    body,
		},
	}
}

// ErrorResponse converts a failed outcome into the HTTP response served in
// respond mode: preconditions become a 400 whose body names what was missing,
// body and header-spec problems become an opaque 500. Returns nil for
// outcomes that already carry a response.
func ErrorResponse(o Outcome) *httpwire.Response {
	switch o.Kind {
	case KindPreconditionFailed:
		return fixedResponse(400, o.Err.Error())
	case KindBodySourceError, KindHeaderSpecError:
		return fixedResponse(500, "Internal Server Error")
	default:
		return nil
	}
}

func fixedResponse(code int, body string) *httpwire.Response {
	return &httpwire.Response{
		Status:  httpwire.StatusFromCode(code),
		Headers: make(map[string]string),
		Body:    []byte(body),
	}
}

// resolveBody materializes the entry's body. The dl branch writes its derived
// headers into headers before any config-declared ones are applied.
func resolveBody(entry *route.Route, baseDir string, headers map[string]string) ([]byte, error) {
	switch entry.ResultType {
	case route.ResultDirect:
		return []byte(entry.Result), nil

	case route.ResultFile:
		path := resolvePath(entry.Result, baseDir)
		if err := checkRegularFile(path); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: %s", ErrBodyNotText, path)
		}
		return data, nil

	case route.ResultDownload:
		path := resolvePath(entry.Result, baseDir)
		if err := checkRegularFile(path); err != nil {
			return nil, err
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		headers["Content-Type"] = httpwire.MIMEByExtension(ext)
		headers["Accept-Ranges"] = "None"
		headers["Content-Disposition"] = "attachment; filename=" + filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return data, nil

	default:
		// Unrecognized tags serve an empty body. Explicit policy, not an error.
		return []byte{}, nil
	}
}

func resolvePath(result, baseDir string) string {
	if baseDir == "" || filepath.IsAbs(result) {
		return result
	}
	return filepath.Join(baseDir, result)
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrBodyFile, path)
	}
	return nil
}
