package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getfakerest/fakerest/internal/httpwire"
	"github.com/getfakerest/fakerest/pkg/route"
	"github.com/getfakerest/fakerest/pkg/util"
)

// Issue is a single problem found while checking a Document.
type Issue struct {
	// Path is the config location, e.g. "routes[2].method".
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationResult collects everything ValidateDocument found, split into
// hard errors and advisory warnings. Warnings never fail a load; they flag
// configurations that will serve surprising responses.
type ValidationResult struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// IsValid returns true if there are no validation errors. Warnings do not
// count.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns the combined error messages, empty when valid.
func (r *ValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return strings.Join(msgs, "\n")
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, Issue{Path: path, Message: message})
}

// AddWarning adds an advisory warning.
func (r *ValidationResult) AddWarning(path, message string) {
	r.Warnings = append(r.Warnings, Issue{Path: path, Message: message})
}

// ValidateDocument checks the whole document and reports every error and
// warning it finds, unlike Document.Validate which stops at the first error.
// baseDir anchors relative result paths for the filesystem warnings; pass the
// server's effective baseDir, or "" for the working directory.
func ValidateDocument(doc *Document, baseDir string) *ValidationResult {
	result := &ValidationResult{}

	if doc.Version == "" {
		result.AddError("version", "required")
	} else if doc.Version != "1.0" {
		result.AddError("version", fmt.Sprintf("unsupported version %q, expected \"1.0\"", doc.Version))
	}

	if doc.Server != nil {
		validateServer(doc.Server, baseDir, result)
	}

	seenPaths := make(map[string]int)
	for i := range doc.Routes {
		path := fmt.Sprintf("routes[%d]", i)
		validateRoute(&doc.Routes[i], path, baseDir, result)

		// First match wins on path alone, so any later entry with the same
		// path is unreachable whatever its method.
		if first, dup := seenPaths[doc.Routes[i].Path]; dup {
			result.AddWarning(path+".path",
				fmt.Sprintf("unreachable: path %q is shadowed by routes[%d]", doc.Routes[i].Path, first))
		} else {
			seenPaths[doc.Routes[i].Path] = i
		}
	}

	for i, pattern := range doc.RouteFiles {
		if pattern == "" {
			result.AddError(fmt.Sprintf("routeFiles[%d]", i), "pattern cannot be empty")
		}
	}

	return result
}

func validateServer(server *ServerConfig, baseDir string, result *ValidationResult) {
	var verr *ValidationError
	if err := server.Validate(); err != nil {
		if errors.As(err, &verr) {
			result.AddError(verr.Field, verr.Message)
		} else {
			result.AddError("server", err.Error())
		}
	}

	if server.BaseDir != "" {
		dir := ResolvePath(baseDir, server.BaseDir)
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			result.AddWarning("server.baseDir",
				fmt.Sprintf("directory not found: %s (file and dl routes will fail)", dir))
		case !info.IsDir():
			result.AddWarning("server.baseDir", fmt.Sprintf("not a directory: %s", dir))
		}
	}
}

func validateRoute(rt *route.Route, path, baseDir string, result *ValidationResult) {
	var verr *ValidationError
	if err := rt.Validate(); err != nil {
		if errors.As(err, &verr) {
			result.AddError(path+"."+verr.Field, verr.Message)
		} else {
			result.AddError(path, err.Error())
		}
		return
	}

	if rt.ResultType != "" && !rt.ResultType.Known() {
		result.AddWarning(path+".resultType",
			fmt.Sprintf("unknown resultType %q, responses will have an empty body", rt.ResultType))
	}

	if rt.StatusCode != 0 && !httpwire.KnownCode(rt.StatusCode) {
		result.AddWarning(path+".statusCode",
			fmt.Sprintf("status code %d is outside the registry, responses will use 200 OK", rt.StatusCode))
	}

	if rt.ResultType == route.ResultFile || rt.ResultType == route.ResultDownload {
		checkResultPath(rt.Result, path+".result", baseDir, result)
	}
}

// checkResultPath warns about file-backed results that look wrong now. These
// stay warnings: the file is read per request, so it may legitimately appear
// after validation.
func checkResultPath(result, path, baseDir string, out *ValidationResult) {
	if !filepath.IsAbs(result) {
		if _, ok := util.SafeFilePath(result); !ok {
			out.AddWarning(path, fmt.Sprintf("path %q escapes the base directory", result))
		}
	}

	resolved := result
	if !filepath.IsAbs(result) && baseDir != "" {
		resolved = filepath.Join(baseDir, result)
	}
	info, err := os.Stat(resolved)
	switch {
	case err != nil:
		out.AddWarning(path, fmt.Sprintf("file not found: %s (checked again at request time)", resolved))
	case !info.Mode().IsRegular():
		out.AddWarning(path, fmt.Sprintf("not a regular file: %s", resolved))
	}
}
