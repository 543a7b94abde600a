package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvHost          = "FAKEREST_HOST"
	EnvPort          = "FAKEREST_PORT"
	EnvConfig        = "FAKEREST_CONFIG"
	EnvReadTimeout   = "FAKEREST_READ_TIMEOUT"
	EnvWriteTimeout  = "FAKEREST_WRITE_TIMEOUT"
	EnvMaxLogEntries = "FAKEREST_MAX_LOG_ENTRIES"
	EnvErrorMode     = "FAKEREST_ERROR_MODE"
	EnvLogLevel      = "FAKEREST_LOG_LEVEL"
	EnvLogFormat     = "FAKEREST_LOG_FORMAT"
	EnvVerbose       = "FAKEREST_VERBOSE"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment; malformed
// numeric values are ignored.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	// FAKEREST_HOST
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
		cfg.Sources["host"] = SourceEnv
	}

	// FAKEREST_PORT
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
			cfg.Sources["port"] = SourceEnv
		}
	}

	// FAKEREST_CONFIG
	if v := os.Getenv(EnvConfig); v != "" {
		cfg.ConfigFile = v
		cfg.Sources["configFile"] = SourceEnv
	}

	// FAKEREST_READ_TIMEOUT
	if v := os.Getenv(EnvReadTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.ReadTimeout = timeout
			cfg.Sources["readTimeout"] = SourceEnv
		}
	}

	// FAKEREST_WRITE_TIMEOUT
	if v := os.Getenv(EnvWriteTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.WriteTimeout = timeout
			cfg.Sources["writeTimeout"] = SourceEnv
		}
	}

	// FAKEREST_MAX_LOG_ENTRIES
	if v := os.Getenv(EnvMaxLogEntries); v != "" {
		if entries, err := strconv.Atoi(v); err == nil {
			cfg.MaxLogEntries = entries
			cfg.Sources["maxLogEntries"] = SourceEnv
		}
	}

	// FAKEREST_ERROR_MODE
	if v := os.Getenv(EnvErrorMode); v != "" {
		cfg.ErrorMode = v
		cfg.Sources["errorMode"] = SourceEnv
	}

	// FAKEREST_LOG_LEVEL
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	// FAKEREST_LOG_FORMAT
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}

	// FAKEREST_VERBOSE
	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
		cfg.Sources["verbose"] = SourceEnv
	}
}

// GetConfigFileFromEnv returns the config file path from the environment.
// Returns empty string if not set.
func GetConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}
