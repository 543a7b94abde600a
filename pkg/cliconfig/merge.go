package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.Host != "" {
		target.Host = source.Host
		target.Sources["host"] = sourceType
	}
	if source.Port != 0 {
		target.Port = source.Port
		target.Sources["port"] = sourceType
	}
	if source.ConfigFile != "" {
		target.ConfigFile = source.ConfigFile
		target.Sources["configFile"] = sourceType
	}
	if source.ReadTimeout != 0 {
		target.ReadTimeout = source.ReadTimeout
		target.Sources["readTimeout"] = sourceType
	}
	if source.WriteTimeout != 0 {
		target.WriteTimeout = source.WriteTimeout
		target.Sources["writeTimeout"] = sourceType
	}
	if source.MaxLogEntries != 0 {
		target.MaxLogEntries = source.MaxLogEntries
		target.Sources["maxLogEntries"] = sourceType
	}
	if source.ErrorMode != "" {
		target.ErrorMode = source.ErrorMode
		target.Sources["errorMode"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	// For booleans, checking `if source.X` cannot detect an explicit false.
	// SetFields (populated during file loading) records whether a boolean
	// key was present in the source. If SetFields is nil (e.g., config built
	// programmatically), only true values are merged.
	if boolIsSet(source, "verbose") {
		target.Verbose = source.Verbose
		target.Sources["verbose"] = sourceType
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config. When SetFields is available
// (file-loaded configs), it checks for the key's presence. Otherwise it
// falls back to treating true as "set".
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "verbose":
		return cfg.Verbose
	case "json":
		return cfg.JSON
	}
	return false
}
