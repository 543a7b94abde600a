package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getfakerest/fakerest/pkg/route"
)

func TestErrorModeValid(t *testing.T) {
	assert.True(t, ErrorModeRespond.Valid())
	assert.True(t, ErrorModeAbort.Valid())
	assert.False(t, ErrorMode("").Valid())
	assert.False(t, ErrorMode("panic").Valid())
	assert.False(t, ErrorMode("Respond").Valid())
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30, cfg.ReadTimeout)
	assert.Equal(t, 30, cfg.WriteTimeout)
	assert.Equal(t, 8192, cfg.MaxLineBytes)
	assert.Equal(t, 100, cfg.MaxHeaderCount)
	assert.Equal(t, 0, cfg.MaxConnections)
	assert.Equal(t, 1000, cfg.MaxLogEntries)
	assert.Equal(t, ErrorModeRespond, cfg.ErrorMode)
	assert.True(t, cfg.LogRequestsEnabled())
}

func TestServerConfigWithDefaults(t *testing.T) {
	t.Run("nil receiver yields full defaults", func(t *testing.T) {
		var cfg *ServerConfig
		got := cfg.WithDefaults()
		assert.Equal(t, DefaultServerConfig(), got)
	})

	t.Run("partial config keeps set values", func(t *testing.T) {
		cfg := &ServerConfig{Port: 9999, ErrorMode: ErrorModeAbort}
		got := cfg.WithDefaults()
		assert.Equal(t, 9999, got.Port)
		assert.Equal(t, ErrorModeAbort, got.ErrorMode)
		assert.Equal(t, "127.0.0.1", got.Host)
		assert.Equal(t, 30, got.ReadTimeout)
		assert.Equal(t, 8192, got.MaxLineBytes)
	})

	t.Run("zero maxConnections stays unlimited", func(t *testing.T) {
		got := (&ServerConfig{}).WithDefaults()
		assert.Equal(t, 0, got.MaxConnections)
	})

	t.Run("receiver is not mutated", func(t *testing.T) {
		cfg := &ServerConfig{Port: 9999}
		_ = cfg.WithDefaults()
		assert.Empty(t, cfg.Host)
	})
}

func TestLogRequestsEnabled(t *testing.T) {
	var nilCfg *ServerConfig
	assert.True(t, nilCfg.LogRequestsEnabled())
	assert.True(t, (&ServerConfig{}).LogRequestsEnabled())

	off := false
	assert.False(t, (&ServerConfig{LogRequests: &off}).LogRequestsEnabled())
	on := true
	assert.True(t, (&ServerConfig{LogRequests: &on}).LogRequestsEnabled())
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ServerConfig
		wantField string
	}{
		{"zero value is valid", ServerConfig{}, ""},
		{"defaults are valid", *DefaultServerConfig(), ""},
		{"negative port", ServerConfig{Port: -1}, "server.port"},
		{"port too large", ServerConfig{Port: 70000}, "server.port"},
		{"negative readTimeout", ServerConfig{ReadTimeout: -1}, "server.readTimeout"},
		{"negative writeTimeout", ServerConfig{WriteTimeout: -1}, "server.writeTimeout"},
		{"negative maxLineBytes", ServerConfig{MaxLineBytes: -5}, "server.maxLineBytes"},
		{"negative maxHeaderCount", ServerConfig{MaxHeaderCount: -1}, "server.maxHeaderCount"},
		{"negative maxConnections", ServerConfig{MaxConnections: -1}, "server.maxConnections"},
		{"negative maxLogEntries", ServerConfig{MaxLogEntries: -1}, "server.maxLogEntries"},
		{"bogus errorMode", ServerConfig{ErrorMode: "panic"}, "server.errorMode"},
		{"empty errorMode is allowed", ServerConfig{ErrorMode: ""}, ""},
		{"abort mode is allowed", ServerConfig{ErrorMode: ErrorModeAbort}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestDocumentValidate(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/hello", Method: route.MethodGet, ResultType: route.ResultDirect, Result: "hi"},
			},
		}
		assert.NoError(t, doc.Validate())
	})

	t.Run("unsupported version", func(t *testing.T) {
		doc := &Document{Version: "2.0"}
		err := doc.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported version")
	})

	t.Run("empty version", func(t *testing.T) {
		err := (&Document{}).Validate()
		require.Error(t, err)
	})

	t.Run("invalid route is reported with its index", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/ok", Method: route.MethodGet},
				{Path: "no-slash", Method: route.MethodGet},
			},
		}
		err := doc.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "routes[1]")
	})

	t.Run("invalid server settings", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Server:  &ServerConfig{Port: -1},
		}
		err := doc.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	})
}

func TestDocumentTable(t *testing.T) {
	doc := &Document{
		Version: "1.0",
		Routes: []route.Route{
			{Path: "/a", Method: route.MethodGet, ResultType: route.ResultDirect, Result: "a"},
			{Path: "/b", Method: route.MethodPost, ResultType: route.ResultDirect, Result: "b"},
		},
	}

	table := doc.Table()
	require.Equal(t, 2, table.Len())

	entry, ok := table.FindPath("/a")
	require.True(t, ok)
	assert.Equal(t, route.MethodGet, entry.Method)
	assert.Equal(t, "a", entry.Result)

	_, ok = table.FindPath("/missing")
	assert.False(t, ok)
}

func warningText(r *ValidationResult) string {
	var sb strings.Builder
	for _, w := range r.Warnings {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestValidateDocument(t *testing.T) {
	t.Run("collects every error", func(t *testing.T) {
		doc := &Document{
			Routes: []route.Route{
				{Method: route.MethodGet},
				{Path: "/x", Method: "FETCH"},
			},
		}
		result := ValidateDocument(doc, "")
		assert.False(t, result.IsValid())
		require.Len(t, result.Errors, 3)
		assert.Equal(t, "version", result.Errors[0].Path)
		assert.Equal(t, "routes[0].path", result.Errors[1].Path)
		assert.Equal(t, "routes[1].method", result.Errors[2].Path)
		assert.Contains(t, result.Error(), "routes[1].method")
	})

	t.Run("valid document has no errors or warnings", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/hello", Method: route.MethodGet, StatusCode: 200, ResultType: route.ResultDirect, Result: "hi"},
			},
		}
		result := ValidateDocument(doc, "")
		assert.True(t, result.IsValid())
		assert.Empty(t, result.Warnings)
		assert.Empty(t, result.Error())
	})

	t.Run("duplicate path is flagged unreachable", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/dup", Method: route.MethodGet, ResultType: route.ResultDirect},
				{Path: "/dup", Method: route.MethodPost, ResultType: route.ResultDirect},
			},
		}
		result := ValidateDocument(doc, "")
		assert.True(t, result.IsValid())
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "routes[1].path", result.Warnings[0].Path)
		assert.Contains(t, result.Warnings[0].Message, "shadowed by routes[0]")
	})

	t.Run("unknown resultType warns", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/x", Method: route.MethodGet, ResultType: "mystery"},
			},
		}
		result := ValidateDocument(doc, "")
		assert.True(t, result.IsValid())
		assert.Contains(t, warningText(result), "unknown resultType")
	})

	t.Run("status outside the registry warns", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/x", Method: route.MethodGet, StatusCode: 999, ResultType: route.ResultDirect},
			},
		}
		result := ValidateDocument(doc, "")
		assert.True(t, result.IsValid())
		assert.Contains(t, warningText(result), "200 OK")
	})

	t.Run("missing body file warns", func(t *testing.T) {
		tmpDir := t.TempDir()
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/f", Method: route.MethodGet, ResultType: route.ResultFile, Result: "missing.txt"},
			},
		}
		result := ValidateDocument(doc, tmpDir)
		assert.True(t, result.IsValid())
		assert.Contains(t, warningText(result), "file not found")
	})

	t.Run("existing body file does not warn", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "body.txt"), []byte("hello"), 0644))
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/f", Method: route.MethodGet, ResultType: route.ResultFile, Result: "body.txt"},
			},
		}
		result := ValidateDocument(doc, tmpDir)
		assert.True(t, result.IsValid())
		assert.Empty(t, result.Warnings)
	})

	t.Run("traversal outside the base directory warns", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Routes: []route.Route{
				{Path: "/f", Method: route.MethodGet, ResultType: route.ResultDownload, Result: "../../secret.pdf"},
			},
		}
		result := ValidateDocument(doc, t.TempDir())
		assert.Contains(t, warningText(result), "escapes the base directory")
	})

	t.Run("missing baseDir warns", func(t *testing.T) {
		doc := &Document{
			Version: "1.0",
			Server:  &ServerConfig{BaseDir: "no-such-dir"},
		}
		result := ValidateDocument(doc, t.TempDir())
		assert.True(t, result.IsValid())
		assert.Contains(t, warningText(result), "directory not found")
	})

	t.Run("empty routeFiles pattern is an error", func(t *testing.T) {
		doc := &Document{Version: "1.0", RouteFiles: []string{""}}
		result := ValidateDocument(doc, "")
		assert.False(t, result.IsValid())
		assert.Equal(t, "routeFiles[0]", result.Errors[0].Path)
	})
}
