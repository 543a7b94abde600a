package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading and saving.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadFromFile reads a Document from a JSON or YAML file. The format is
// auto-detected by extension (.yaml, .yml for YAML, otherwise JSON), and
// ${VAR} / ${VAR:-default} references are expanded before decoding.
// Returns wrapped sentinel errors for the common failure cases.
func LoadFromFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	expanded := []byte(ExpandEnvVars(string(data)))

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(expanded)
	}

	if !json.Valid(expanded) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	return ParseJSON(expanded)
}

// LoadDocument loads a config file and expands its routeFiles globs,
// appending the loaded routes after the inline ones. Relative glob patterns
// and a relative server baseDir resolve against the config file's directory.
func LoadDocument(path string) (*Document, error) {
	doc, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	base := ConfigBaseDir(path)
	if len(doc.RouteFiles) > 0 {
		extra, err := LoadRouteFiles(doc.RouteFiles, base)
		if err != nil {
			return nil, err
		}
		doc.Routes = append(doc.Routes, extra...)
	}

	if doc.Server != nil && doc.Server.BaseDir != "" {
		doc.Server.BaseDir = ResolvePath(base, doc.Server.BaseDir)
	}

	return doc, nil
}

// ParseYAML parses YAML bytes into a Document with validation.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &doc, nil
}

// ParseJSON parses JSON bytes into a Document with validation.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &doc, nil
}

// SaveToFile writes a Document to a file using atomic rename. The format is
// determined by file extension (.yaml, .yml for YAML, otherwise JSON).
// Creates parent directories if they don't exist.
func SaveToFile(path string, doc *Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}

	ext := strings.ToLower(filepath.Ext(path))
	var data []byte
	var err error
	if ext == ".yaml" || ext == ".yml" {
		data, err = ToYAML(doc)
	} else {
		data, err = ToJSON(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to a temporary file first (atomic write pattern)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// ToJSON marshals a Document to formatted JSON bytes.
func ToJSON(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("document cannot be nil")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	// Trailing newline for better file formatting
	data = append(data, '\n')
	return data, nil
}

// ToYAML marshals a Document to YAML bytes.
func ToYAML(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("document cannot be nil")
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return data, nil
}

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}

// ResolvePath resolves a potentially relative path against a base directory.
func ResolvePath(basePath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	// Handle ~ expansion
	if strings.HasPrefix(targetPath, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, targetPath[2:])
		}
	}
	return filepath.Join(basePath, targetPath)
}

// ConfigBaseDir returns the directory used to resolve relative paths found in
// a config file, typically the directory containing the file itself.
func ConfigBaseDir(configPath string) string {
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(configPath)
}
