// Package cliconfig provides configuration types and loading for the fakerest CLI.
package cliconfig

import (
	"fmt"
	"strings"

	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/logging"
)

// CLIConfig represents the complete configuration for the fakerest CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.fakerestrc.yaml in current directory)
// 4. Global config file (~/.config/fakerest/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Server settings
	Host         string `yaml:"host,omitempty" json:"host,omitempty"`
	Port         int    `yaml:"port" json:"port"`
	ConfigFile   string `yaml:"configFile,omitempty" json:"configFile,omitempty"`
	ReadTimeout  int    `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout" json:"writeTimeout"`
	ErrorMode    string `yaml:"errorMode,omitempty" json:"errorMode,omitempty"`

	// Logging settings
	MaxLogEntries int    `yaml:"maxLogEntries" json:"maxLogEntries"`
	LogLevel      string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	LogFormat     string `yaml:"logFormat,omitempty" json:"logFormat,omitempty"`

	// Output settings
	Verbose bool `yaml:"verbose" json:"verbose"`
	JSON    bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which top-level keys were present in a loaded file,
	// so merging can tell an explicit false apart from an absent boolean.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)

// Validate checks that the merged configuration is usable.
func (c *CLIConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range (0-65535)", c.Port)
	}
	if c.ReadTimeout < 0 || c.ReadTimeout > 3600 {
		return fmt.Errorf("readTimeout %d is out of range (0-3600)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 || c.WriteTimeout > 3600 {
		return fmt.Errorf("writeTimeout %d is out of range (0-3600)", c.WriteTimeout)
	}
	if c.MaxLogEntries < 0 || c.MaxLogEntries > 100000 {
		return fmt.Errorf("maxLogEntries %d is out of range (0-100000)", c.MaxLogEntries)
	}
	if c.ErrorMode != "" && !config.ErrorMode(c.ErrorMode).Valid() {
		return fmt.Errorf("errorMode %q is not one of %q, %q", c.ErrorMode, config.ErrorModeRespond, config.ErrorModeAbort)
	}
	if c.LogLevel != "" && !logging.KnownLevel(c.LogLevel) {
		return fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.LogFormat != "" && !logging.KnownFormat(c.LogFormat) {
		return fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat)
	}
	return nil
}

// ServerConfig converts the CLI-level settings into a server config.
// Zero values carry through and are filled by WithDefaults at start time,
// so flag and env overrides only pin what was actually set.
func (c *CLIConfig) ServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:          c.Host,
		Port:          c.Port,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
		MaxLogEntries: c.MaxLogEntries,
		ErrorMode:     config.ErrorMode(c.ErrorMode),
	}
}

// LoggingConfig converts the CLI-level log settings into a logging config.
// Verbose forces debug level regardless of logLevel.
func (c *CLIConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	if c.Verbose {
		cfg.Level = logging.LevelDebug
	}
	cfg.Format = logging.ParseFormat(c.LogFormat)
	return cfg
}

// SourceOf returns where the named key's value came from, or "default" when
// the key was never overridden.
func (c *CLIConfig) SourceOf(key string) string {
	if c.Sources == nil {
		return SourceDefault
	}
	if src, ok := c.Sources[strings.TrimSpace(key)]; ok {
		return src
	}
	return SourceDefault
}
