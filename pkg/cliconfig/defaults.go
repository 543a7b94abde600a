package cliconfig

// DefaultHost is the default interface the server binds.
const DefaultHost = "127.0.0.1"

// DefaultPort is the default TCP port for mock traffic.
const DefaultPort = 8080

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// DefaultMaxLogEntries is the default maximum request log entries.
const DefaultMaxLogEntries = 1000

// DefaultErrorMode is how resolution failures are answered.
const DefaultErrorMode = "respond"

// DefaultLogLevel is the default minimum log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log output format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Host:          DefaultHost,
		Port:          DefaultPort,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		MaxLogEntries: DefaultMaxLogEntries,
		ErrorMode:     DefaultErrorMode,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Sources:       make(map[string]string),
	}

	// Mark all as default source
	cfg.Sources["host"] = SourceDefault
	cfg.Sources["port"] = SourceDefault
	cfg.Sources["readTimeout"] = SourceDefault
	cfg.Sources["writeTimeout"] = SourceDefault
	cfg.Sources["maxLogEntries"] = SourceDefault
	cfg.Sources["errorMode"] = SourceDefault
	cfg.Sources["logLevel"] = SourceDefault
	cfg.Sources["logFormat"] = SourceDefault

	return cfg
}
