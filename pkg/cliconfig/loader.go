package cliconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "fakerest"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".fakerestrc.yaml", ".fakerestrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches for .fakerestrc.yaml or .fakerestrc.yml in the
// current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// GetLocalConfigSearchPaths returns the paths that will be searched for local config.
func GetLocalConfigSearchPaths() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	paths := make([]string, len(LocalConfigFileNames))
	for i, name := range LocalConfigFileNames {
		paths[i] = filepath.Join(cwd, name)
	}
	return paths
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // intentionally returning empty string when no config dir is available
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// GetGlobalConfigSearchPaths returns the paths that will be searched for global config.
func GetGlobalConfigSearchPaths() []string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	paths := make([]string, len(GlobalConfigFileNames))
	for i, name := range GlobalConfigFileNames {
		paths[i] = filepath.Join(configDir, GlobalConfigDir, name)
	}
	return paths
}

// LoadConfigFile loads a CLIConfig from a YAML file. Top-level keys present
// in the file are recorded in SetFields so MergeConfig can apply explicit
// false values.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{
			Path:    path,
			Message: err.Error(),
		}
	}

	var cfg CLIConfig
	// An empty file decodes to a zero node; treat it as an empty config.
	if doc.Kind != 0 {
		if err := doc.Decode(&cfg); err != nil {
			return nil, &ConfigError{
				Path:    path,
				Message: err.Error(),
			}
		}
	}

	cfg.Sources = make(map[string]string)
	cfg.SetFields = topLevelKeys(&doc)
	return &cfg, nil
}

// topLevelKeys collects the mapping keys present in the document root.
func topLevelKeys(doc *yaml.Node) map[string]bool {
	keys := make(map[string]bool)
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return keys
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys[root.Content[i].Value] = true
	}
	return keys
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: flags > env > local config > global config > defaults
// (flags are applied by the CLI layer after LoadAll returns).
func LoadAll() (*CLIConfig, error) {
	// Start with defaults
	cfg := NewDefault()

	// Load global config
	if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
		if globalCfg, err := LoadConfigFile(globalPath); err == nil {
			MergeConfig(cfg, globalCfg, SourceGlobal)
		}
	}

	// Load local config
	if localPath, err := FindLocalConfig(); err == nil && localPath != "" {
		if localCfg, err := LoadConfigFile(localPath); err == nil {
			MergeConfig(cfg, localCfg, SourceLocal)
		}
	}

	// Load environment variables
	LoadEnvConfig(cfg)

	return cfg, nil
}
