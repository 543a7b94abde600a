// Package httpwire is the hand-rolled HTTP/1.1 wire layer: a line-oriented
// request parser, a response serializer, and the status and content-type
// tables responses are assembled from. fakerest speaks to raw TCP connections,
// so nothing here depends on net/http.
package httpwire

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/getfakerest/fakerest/pkg/route"
)

// Parse failure sentinels. Socket errors from the underlying reader are
// returned as-is and are always connection-fatal.
var (
	// ErrInvalidUTF8 means a request or header line was not valid UTF-8.
	ErrInvalidUTF8 = errors.New("line is not valid UTF-8")

	// ErrLineTooLong means a line exceeded Limits.MaxLineBytes before a CRLF
	// was seen.
	ErrLineTooLong = errors.New("line too long")

	// ErrTooManyHeaders means the request carried more header lines than
	// Limits.MaxHeaders allows.
	ErrTooManyHeaders = errors.New("too many header lines")
)

// Default request read bounds. A peer that never sends a CRLF must not be able
// to grow a line buffer without limit.
const (
	DefaultMaxLineBytes = 8192
	DefaultMaxHeaders   = 100
)

// Limits bounds what ReadRequest will accumulate. The zero value means
// defaults.
type Limits struct {
	// MaxLineBytes caps a single line, terminator included.
	MaxLineBytes int
	// MaxHeaders caps the number of header lines.
	MaxHeaders int
}

func (l Limits) withDefaults() Limits {
	if l.MaxLineBytes <= 0 {
		l.MaxLineBytes = DefaultMaxLineBytes
	}
	if l.MaxHeaders <= 0 {
		l.MaxHeaders = DefaultMaxHeaders
	}
	return l
}

// Request is a parsed HTTP/1.1 request. It is built once by ReadRequest and
// owned by the connection that read it.
type Request struct {
	// Method is the method token exactly as received. Method.Valid() reports
	// whether it is one of the recognized tokens; policy for unrecognized
	// tokens belongs to the resolver, not the parser.
	Method route.Method

	// URI is the request path with any query component stripped.
	URI string

	// Version is the protocol token, e.g. "HTTP/1.1". Informational only.
	Version string

	// Headers holds header lines, keys case-sensitive as received. A repeated
	// key keeps the last value.
	Headers map[string]string

	// Query holds decoded query parameters; duplicate keys keep the last value.
	Query map[string]string
}

// ReadRequest consumes one request head from br: the request line, then header
// lines until a bare CRLF. It never reads a message body, whatever the method
// or Content-Length says. Lines are CRLF-terminated; a lone LF terminator is
// tolerated the way net/textproto tolerates it.
func ReadRequest(br *bufio.Reader, limits Limits) (*Request, error) {
	limits = limits.withDefaults()

	line, err := readLine(br, limits.MaxLineBytes)
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(line) {
		return nil, fmt.Errorf("request line: %w", ErrInvalidUTF8)
	}

	req := &Request{
		Headers: make(map[string]string),
		Query:   make(map[string]string),
	}
	if err := parseRequestLine(line, req); err != nil {
		return nil, err
	}

	count := 0
	for {
		line, err := readLine(br, limits.MaxLineBytes)
		if err != nil {
			return nil, err
		}
		if line == "" {
			// Bare CRLF: headers are complete.
			return req, nil
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("header line: %w", ErrInvalidUTF8)
		}
		count++
		if count > limits.MaxHeaders {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyHeaders, limits.MaxHeaders)
		}
		key, value, err := SplitPair(line, ':')
		if err != nil {
			return nil, fmt.Errorf("header line: %w", err)
		}
		req.Headers[key] = value
	}
}

// parseRequestLine fills method, URI, version and query parameters from the
// request line. Tokens are produced by splitting on single spaces; missing
// tokens become empty strings rather than errors, which the resolver then
// fails to match.
func parseRequestLine(line string, req *Request) error {
	parts := strings.Split(line, " ")
	token := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	req.Method = route.Method(token(0))
	req.Version = token(2)

	target := token(1)
	if i := strings.IndexByte(target, '?'); i >= 0 {
		req.URI = target[:i]
		for _, seg := range strings.Split(target[i+1:], "&") {
			key, value, err := SplitPair(seg, '=')
			if err != nil {
				return fmt.Errorf("query segment: %w", err)
			}
			req.Query[key] = value
		}
	} else {
		req.URI = target
	}
	return nil
}

// readLine accumulates bytes up to and including the next LF, enforcing max,
// and returns the line with its terminator stripped. Read errors, io.EOF
// included, propagate untouched.
func readLine(br *bufio.Reader, max int) (string, error) {
	var buf []byte
	for {
		frag, err := br.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > max {
			return "", fmt.Errorf("%w: %d bytes without a line ending (limit %d)", ErrLineTooLong, len(buf), max)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return "", err
	}

	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		n--
		if n > 0 && buf[n-1] == '\r' {
			n--
		}
	}
	return string(buf[:n]), nil
}

// IsParseError reports whether err is a request-parse failure rather than a
// transport error. Both abort the connection; they are distinguished only for
// logging and metrics.
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidUTF8) ||
		errors.Is(err, ErrMissingDelimiter) ||
		errors.Is(err, ErrLineTooLong) ||
		errors.Is(err, ErrTooManyHeaders)
}
