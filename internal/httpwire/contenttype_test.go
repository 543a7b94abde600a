package httpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIMEByExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"pdf", "application/pdf"},
		{"json", "application/json"},
		{"html", "text/html"},
		{"htm", "text/html"},
		{"png", "image/png"},
		{"jpg", "image/jpeg"},
		{"jpeg", "image/jpeg"},
		{"zip", "application/zip"},
		{"txt", "text/plain"},
		{"woff2", "font/woff2"},

		// Unknown and degenerate inputs resolve to an empty string, never to a
		// default type.
		{"", ""},
		{"exe", ""},
		{"unknownext", ""},
		{"PDF", ""}, // extensions are matched as-is, without case folding
		{".pdf", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MIMEByExtension(tt.ext), "ext %q", tt.ext)
	}
}
