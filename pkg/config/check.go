package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigNames are the filenames DiscoverConfigFile looks for, in order.
var DefaultConfigNames = []string{"fakerest.yaml", "fakerest.yml", "fakerest.json"}

// DiscoverConfigFile looks for a config file with a default name in the
// current directory. Returns an error naming the expected file when none is
// found.
func DiscoverConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for _, name := range DefaultConfigNames {
		path := filepath.Join(cwd, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s found in %s (use --config to name a file)", DefaultConfigNames[0], cwd)
}

// CheckFile loads path leniently and reports every problem ValidateDocument
// can find, rather than stopping at the first one the way LoadDocument does.
// Syntax and I/O failures still return an error since there is no document to
// check. The returned document has routeFiles expanded and a relative baseDir
// resolved, mirroring what a server loading the same file would run.
func CheckFile(path string) (*Document, *ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	expanded := []byte(ExpandEnvVars(string(data)))

	var doc Document
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(expanded, &doc); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	} else {
		if err := json.Unmarshal(expanded, &doc); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	base := ConfigBaseDir(path)
	if doc.Server != nil && doc.Server.BaseDir != "" {
		doc.Server.BaseDir = ResolvePath(base, doc.Server.BaseDir)
	}

	// A broken include is one finding, not a reason to skip the rest of the
	// document.
	var routeFilesErr error
	if len(doc.RouteFiles) > 0 {
		extra, err := LoadRouteFiles(doc.RouteFiles, base)
		if err != nil {
			routeFilesErr = err
		} else {
			doc.Routes = append(doc.Routes, extra...)
		}
	}

	effBase := ""
	if doc.Server != nil {
		effBase = doc.Server.BaseDir
	}
	result := ValidateDocument(&doc, effBase)
	if routeFilesErr != nil {
		result.AddError("routeFiles", routeFilesErr.Error())
	}

	return &doc, result, nil
}
