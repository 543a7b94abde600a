package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		maxSize int
		want    string
	}{
		{"short string no truncation", "hello", 100, "hello"},
		{"exact length", "12345", 5, "12345"},
		{"one over", "123456", 5, "12345...(truncated)"},
		{"zero maxSize uses default", "hello", 0, "hello"},
		{"negative maxSize uses default", "hello", -1, "hello"},
		{"empty string", "", 10, ""},
		{"large truncation", "abcdefghij", 3, "abc...(truncated)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateBody(tt.data, tt.maxSize)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateBody_DefaultMaxSize(t *testing.T) {
	t.Parallel()

	// MaxLogBodySize is 10KB (10240 bytes)
	data := make([]byte, MaxLogBodySize+100)
	for i := range data {
		data[i] = 'x'
	}

	result := TruncateBody(string(data), 0)
	assert.Equal(t, MaxLogBodySize+len("...(truncated)"), len(result))
	assert.Contains(t, result, "...(truncated)")

	// Under the limit — no truncation
	shortData := string(data[:MaxLogBodySize])
	result2 := TruncateBody(shortData, 0)
	assert.Equal(t, shortData, result2)
}
