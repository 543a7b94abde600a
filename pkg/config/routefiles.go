package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getfakerest/fakerest/pkg/route"
)

// RouteFileContent is what a file referenced from routeFiles may hold: either
// a bare YAML list of routes or a mapping with a routes key.
type RouteFileContent struct {
	Routes []route.Route `json:"routes" yaml:"routes"`
}

// UnmarshalYAML accepts both the bare-list and the mapping form.
func (c *RouteFileContent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&c.Routes)
	}
	// Alias avoids recursing back into this method.
	type routeFileContentAlias RouteFileContent
	return node.Decode((*routeFileContentAlias)(c))
}

// LoadRouteFiles expands each glob pattern and loads the routes from every
// matching file. Relative patterns resolve against baseDir. Matches within a
// pattern load in lexicographic order; patterns keep their declared order. A
// pattern with no matches is not an error.
func LoadRouteFiles(patterns []string, baseDir string) ([]route.Route, error) {
	var routes []route.Route

	for i, pattern := range patterns {
		resolved := ResolvePath(baseDir, pattern)

		matches, err := expandGlob(resolved)
		if err != nil {
			return nil, fmt.Errorf("routeFiles[%d] (%s): %w", i, pattern, err)
		}

		// Sort matches for deterministic ordering
		sort.Strings(matches)

		for _, match := range matches {
			loaded, err := loadRoutesFromFile(match)
			if err != nil {
				relPath, relErr := filepath.Rel(baseDir, match)
				if relErr != nil || relPath == "" {
					relPath = match
				}
				return nil, fmt.Errorf("routeFiles[%d]: loading %s: %w", i, relPath, err)
			}
			routes = append(routes, loaded...)
		}
	}

	return routes, nil
}

// loadRoutesFromFile reads one route file. YAML handles both dialects; JSON
// files parse as the YAML subset they are.
func loadRoutesFromFile(path string) ([]route.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	expanded := ExpandEnvVars(string(data))

	var content RouteFileContent
	if err := yaml.Unmarshal([]byte(expanded), &content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	for i := range content.Routes {
		if err := content.Routes[i].Validate(); err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
	}

	return content.Routes, nil
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		// FilepathGlob returns matches using the OS path separator
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
