package httpwire

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Response is a fully materialized HTTP response: status, assembled headers,
// and a body already buffered in memory. Streaming is out of scope.
type Response struct {
	Status  Status
	Headers map[string]string
	Body    []byte
}

// WriteResponse serializes resp to w as HTTP/1.1: status line, headers, blank
// line, body. Content-Length is filled in from the body length whenever the
// header map does not already carry one, so it is always present on the wire
// and accurate unless a route's config deliberately overrode it. Header order
// is not part of the contract; keys are written sorted so output is stable.
func WriteResponse(w io.Writer, resp *Response) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", resp.Status.Code, resp.Status.Message)

	keys := make([]string, 0, len(resp.Headers)+1)
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	if _, ok := resp.Headers["Content-Length"]; !ok {
		keys = append(keys, "Content-Length")
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := resp.Headers[k]
		if !ok && k == "Content-Length" {
			v = strconv.Itoa(len(resp.Body))
		}
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	buf.WriteString("\r\n")
	buf.Write(resp.Body)

	_, err := w.Write(buf.Bytes())
	return err
}
