package config

import (
	"fmt"

	"github.com/getfakerest/fakerest/pkg/route"
)

// ValidationError is an alias for route.ValidationError so callers can treat
// config and route validation failures uniformly.
type ValidationError = route.ValidationError

// ErrorMode selects how the server answers requests that fail a route's
// preconditions or whose body cannot be materialized.
type ErrorMode string

const (
	// ErrorModeRespond turns failures into HTTP error responses.
	ErrorModeRespond ErrorMode = "respond"
	// ErrorModeAbort closes the connection without writing a response.
	ErrorModeAbort ErrorMode = "abort"
)

// Valid reports whether m is a recognized error mode.
func (m ErrorMode) Valid() bool {
	return m == ErrorModeRespond || m == ErrorModeAbort
}

// ServerConfig defines the listener and per-connection settings.
type ServerConfig struct {
	// Host is the interface to bind. Default: 127.0.0.1
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// Port is the TCP port to listen on. Default: 8080
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// ReadTimeout is the per-connection read deadline in seconds. Default: 30
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	// WriteTimeout is the per-connection write deadline in seconds. Default: 30
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	// MaxLineBytes caps the request line and each header line. Default: 8192
	MaxLineBytes int `json:"maxLineBytes,omitempty" yaml:"maxLineBytes,omitempty"`
	// MaxHeaderCount caps the number of request header lines. Default: 100
	MaxHeaderCount int `json:"maxHeaderCount,omitempty" yaml:"maxHeaderCount,omitempty"`
	// MaxConnections caps concurrent connections (0 = unlimited).
	MaxConnections int `json:"maxConnections,omitempty" yaml:"maxConnections,omitempty"`
	// MaxLogEntries is the request log ring capacity. Default: 1000
	MaxLogEntries int `json:"maxLogEntries,omitempty" yaml:"maxLogEntries,omitempty"`
	// LogRequests enables the in-memory request log (default: true).
	LogRequests *bool `json:"logRequests,omitempty" yaml:"logRequests,omitempty"`
	// ErrorMode is "respond" (default) or "abort".
	ErrorMode ErrorMode `json:"errorMode,omitempty" yaml:"errorMode,omitempty"`
	// BaseDir anchors relative file/dl result paths. Empty means the process
	// working directory. A relative BaseDir in a config file is resolved
	// against the file's own directory by LoadDocument.
	BaseDir string `json:"baseDir,omitempty" yaml:"baseDir,omitempty"`
}

// DefaultServerConfig returns the settings used when a config file has no
// server section.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "127.0.0.1",
		Port:           8080,
		ReadTimeout:    30,
		WriteTimeout:   30,
		MaxLineBytes:   8192,
		MaxHeaderCount: 100,
		MaxConnections: 0,
		MaxLogEntries:  1000,
		ErrorMode:      ErrorModeRespond,
	}
}

// WithDefaults returns a copy of c with unset fields filled in from
// DefaultServerConfig. A nil receiver yields the full defaults.
func (c *ServerConfig) WithDefaults() *ServerConfig {
	def := DefaultServerConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Host == "" {
		out.Host = def.Host
	}
	if out.Port == 0 {
		out.Port = def.Port
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = def.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = def.WriteTimeout
	}
	if out.MaxLineBytes == 0 {
		out.MaxLineBytes = def.MaxLineBytes
	}
	if out.MaxHeaderCount == 0 {
		out.MaxHeaderCount = def.MaxHeaderCount
	}
	if out.MaxLogEntries == 0 {
		out.MaxLogEntries = def.MaxLogEntries
	}
	if out.ErrorMode == "" {
		out.ErrorMode = def.ErrorMode
	}
	return &out
}

// LogRequestsEnabled returns the logRequests setting, defaulting to true.
func (c *ServerConfig) LogRequestsEnabled() bool {
	if c == nil || c.LogRequests == nil {
		return true
	}
	return *c.LogRequests
}

// Validate checks the server settings. It does not touch the filesystem;
// BaseDir existence is a ValidateDocument warning, not a load error.
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{Field: "server.port", Message: fmt.Sprintf("invalid port %d, must be 0-65535", c.Port)}
	}
	if c.ReadTimeout < 0 {
		return &ValidationError{Field: "server.readTimeout", Message: "readTimeout must be >= 0"}
	}
	if c.WriteTimeout < 0 {
		return &ValidationError{Field: "server.writeTimeout", Message: "writeTimeout must be >= 0"}
	}
	if c.MaxLineBytes < 0 {
		return &ValidationError{Field: "server.maxLineBytes", Message: "maxLineBytes must be >= 0"}
	}
	if c.MaxHeaderCount < 0 {
		return &ValidationError{Field: "server.maxHeaderCount", Message: "maxHeaderCount must be >= 0"}
	}
	if c.MaxConnections < 0 {
		return &ValidationError{Field: "server.maxConnections", Message: "maxConnections must be >= 0"}
	}
	if c.MaxLogEntries < 0 {
		return &ValidationError{Field: "server.maxLogEntries", Message: "maxLogEntries must be >= 0"}
	}
	if c.ErrorMode != "" && !c.ErrorMode.Valid() {
		return &ValidationError{Field: "server.errorMode", Message: fmt.Sprintf("invalid errorMode %q, must be %q or %q", c.ErrorMode, ErrorModeRespond, ErrorModeAbort)}
	}
	return nil
}

// Document is the root of a fakerest config file.
type Document struct {
	// Version is the config format version (currently "1.0").
	Version string `json:"version" yaml:"version"`
	// Server holds listener settings; nil means all defaults.
	Server *ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
	// Routes are inline route definitions, in match order.
	Routes []route.Route `json:"routes,omitempty" yaml:"routes,omitempty"`
	// RouteFiles are glob patterns (doublestar ** supported) naming files with
	// more routes. Matches load in lexicographic order and append after the
	// inline routes.
	RouteFiles []string `json:"routeFiles,omitempty" yaml:"routeFiles,omitempty"`
}

// Validate checks the document is loadable. It returns the first problem
// found; ValidateDocument collects everything including warnings.
func (d *Document) Validate() error {
	if d.Version != "1.0" {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version: %q (expected 1.0)", d.Version),
		}
	}
	if d.Server != nil {
		if err := d.Server.Validate(); err != nil {
			return err
		}
	}
	for i := range d.Routes {
		if err := d.Routes[i].Validate(); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("routes[%d]", i),
				Message: err.Error(),
			}
		}
	}
	return nil
}

// Table builds the immutable route table the engine serves from. Inline
// routes come first, in declared order, followed by any routes appended from
// routeFiles by LoadDocument.
func (d *Document) Table() *route.Table {
	return route.NewTable(d.Routes)
}
