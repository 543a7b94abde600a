package httpwire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingDelimiter is returned by SplitPair when the line does not contain
// the requested delimiter at all.
var ErrMissingDelimiter = errors.New("missing delimiter")

// SplitPair splits line on the first occurrence of delim and trims surrounding
// whitespace from both halves. An empty key or value after trimming is fine;
// only the absence of the delimiter is an error. Header lines, query segments
// and configured result headers all go through here.
func SplitPair(line string, delim byte) (key, value string, err error) {
	i := strings.IndexByte(line, delim)
	if i < 0 {
		return "", "", fmt.Errorf("%w: no %q in %q", ErrMissingDelimiter, string(delim), line)
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), nil
}
