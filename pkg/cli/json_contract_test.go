package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// ─── Test infrastructure ────────────────────────────────────────────────────

// captureJSONOutput runs fn with jsonOutput=true and captures stdout.
// Returns the raw bytes written to stdout and any error from fn.
func captureJSONOutput(t *testing.T, fn func() error) ([]byte, error) {
	t.Helper()

	// Enable --json mode
	oldJSON := jsonOutput
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = oldJSON })

	// Capture stdout
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}

	return data, fnErr
}

// assertValidJSON asserts that data is valid JSON and returns the parsed map.
// Fails the test if data is empty, not valid JSON, or contains non-JSON prose.
func assertValidJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()

	if len(data) == 0 {
		t.Fatal("stdout was empty; expected JSON output")
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		// Check if it's a JSON array instead
		var arr []any
		if arrErr := json.Unmarshal(data, &arr); arrErr != nil {
			t.Fatalf("stdout is not valid JSON:\n---\n%s\n---\nerror: %v", string(data), err)
		}
		// Wrap array in a map so callers can still use assertHasKeys
		return map[string]any{"_array": arr}
	}

	return result
}

// assertHasKeys asserts that the JSON object contains all expected top-level keys.
func assertHasKeys(t *testing.T, obj map[string]any, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			t.Errorf("JSON output missing expected key %q; got keys: %v", key, mapKeys(obj))
		}
	}
}

// assertNoProseOnStdout verifies that captured stdout contains only JSON
// (no human-readable prose mixed in). It checks that the entire output
// is parseable as a single JSON value.
func assertNoProseOnStdout(t *testing.T, data []byte) {
	t.Helper()
	if len(data) == 0 {
		return // Empty is fine (some error paths may not write)
	}
	// Try to parse as JSON. If it fails, there's prose mixed in.
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Errorf("stdout contains non-JSON content (prose leak):\n---\n%s\n---", string(data))
	}
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// ─── printResult / printList contract ───────────────────────────────────────

func TestPrintResult_JSONMode(t *testing.T) {
	data, _ := captureJSONOutput(t, func() error {
		printResult(map[string]any{"status": "ok", "count": 42}, nil)
		return nil
	})

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)
	assertHasKeys(t, obj, "status", "count")

	if obj["status"] != "ok" {
		t.Errorf("status = %v, want ok", obj["status"])
	}
}

func TestPrintResult_TextMode(t *testing.T) {
	// Ensure textFn is called in text mode, NOT json
	oldJSON := jsonOutput
	jsonOutput = false
	defer func() { jsonOutput = oldJSON }()

	called := false
	oldStdout := os.Stdout
	_, w, _ := os.Pipe()
	os.Stdout = w

	printResult(map[string]any{"x": 1}, func() { called = true })

	w.Close()
	os.Stdout = oldStdout

	if !called {
		t.Error("textFn should be called in text mode")
	}
}

func TestPrintList_JSONMode(t *testing.T) {
	items := []map[string]any{
		{"id": "a", "name": "first"},
		{"id": "b", "name": "second"},
	}

	data, _ := captureJSONOutput(t, func() error {
		printList(items, nil)
		return nil
	})

	assertNoProseOnStdout(t, data)

	// Should be a JSON array
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatalf("printList should produce a JSON array: %v", err)
	}
	if len(arr) != 2 {
		t.Errorf("expected 2 items, got %d", len(arr))
	}
}

// ─── version command ────────────────────────────────────────────────────────

func TestVersion_JSONContract(t *testing.T) {
	data, err := captureJSONOutput(t, func() error {
		rootCmd.SetArgs([]string{"version", "--json"})
		return rootCmd.Execute()
	})

	if err != nil {
		t.Fatalf("version --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)
	assertHasKeys(t, obj, "version", "commit", "date", "go", "os", "arch")
}

// ─── validate command ───────────────────────────────────────────────────────

func TestValidate_JSONContract_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fakerest.yaml")
	if err := os.WriteFile(configPath, []byte(`version: "1.0"
routes:
  - path: /hello
    method: GET
    resultType: direct
    result: hi
`), 0644); err != nil {
		t.Fatal(err)
	}

	oldFile := validateFile
	oldSchema := validateSchema
	oldVerbose := validateVerbose
	t.Cleanup(func() {
		validateFile = oldFile
		validateSchema = oldSchema
		validateVerbose = oldVerbose
	})
	validateFile = configPath
	validateSchema = false
	validateVerbose = false

	data, err := captureJSONOutput(t, func() error {
		return validateCmd.RunE(validateCmd, []string{})
	})

	if err != nil {
		t.Fatalf("validate --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)
	assertHasKeys(t, obj, "path", "valid", "errors", "warnings")

	if obj["valid"] != true {
		t.Errorf("valid = %v, want true", obj["valid"])
	}
	// Empty lists must encode as [], never null
	if _, ok := obj["errors"].([]any); !ok {
		t.Errorf("errors = %T, want JSON array", obj["errors"])
	}
}

func TestValidate_JSONContract_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fakerest.yaml")
	if err := os.WriteFile(configPath, []byte(`version: "1.0"
routes:
  - path: no-slash
    method: GET
    resultType: direct
    result: hi
`), 0644); err != nil {
		t.Fatal(err)
	}

	oldFile := validateFile
	oldSchema := validateSchema
	oldVerbose := validateVerbose
	t.Cleanup(func() {
		validateFile = oldFile
		validateSchema = oldSchema
		validateVerbose = oldVerbose
	})
	validateFile = configPath
	validateSchema = false
	validateVerbose = false

	data, runErr := captureJSONOutput(t, func() error {
		return validateCmd.RunE(validateCmd, []string{})
	})
	// Error is expected (validation fails), but JSON should still be on stdout
	if runErr == nil {
		t.Error("validate should return an error for an invalid config")
	}

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)
	assertHasKeys(t, obj, "path", "valid", "errors", "warnings")

	if obj["valid"] != false {
		t.Errorf("valid = %v, want false for invalid config", obj["valid"])
	}
	errs, ok := obj["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Error("errors should be a non-empty array for invalid config")
	}
}

// ─── routes command ─────────────────────────────────────────────────────────

func TestRoutes_JSONContract(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fakerest.yaml")
	if err := os.WriteFile(configPath, []byte(`version: "1.0"
routes:
  - path: /users
    method: GET
    statusCode: 200
    resultType: direct
    result: '[]'
  - path: /teapot
    method: GET
    statusCode: 418
    resultType: direct
    result: short and stout
`), 0644); err != nil {
		t.Fatal(err)
	}

	oldFile := routesFile
	t.Cleanup(func() { routesFile = oldFile })
	routesFile = configPath

	data, err := captureJSONOutput(t, func() error {
		return routesCmd.RunE(routesCmd, []string{})
	})

	if err != nil {
		t.Fatalf("routes --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)

	arr, ok := obj["_array"].([]any)
	if !ok {
		t.Fatal("routes --json should produce a JSON array")
	}
	if len(arr) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(arr))
	}

	first, ok := arr[0].(map[string]any)
	if !ok {
		t.Fatal("routes[0] should be an object")
	}
	assertHasKeys(t, first, "path", "method", "status")

	// 418 is outside the status registry, so the effective status is 200.
	second := arr[1].(map[string]any)
	if second["status"].(float64) != 200 {
		t.Errorf("routes[1].status = %v, want 200 (unknown code degrades)", second["status"])
	}
}

// ─── init command ───────────────────────────────────────────────────────────

func TestInit_JSONContract(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "fakerest.yaml")

	oldOutput := initOutput
	oldForce := initForce
	oldFormat := initFormat
	oldNoInput := initNoInput
	t.Cleanup(func() {
		initOutput = oldOutput
		initForce = oldForce
		initFormat = oldFormat
		initNoInput = oldNoInput
	})
	initOutput = outPath
	initForce = false
	initFormat = ""
	initNoInput = true

	data, err := captureJSONOutput(t, func() error {
		return initCmd.RunE(initCmd, []string{})
	})

	if err != nil {
		t.Fatalf("init --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertNoProseOnStdout(t, data)
	assertHasKeys(t, obj, "created", "routes")

	if obj["created"] != outPath {
		t.Errorf("created = %v, want %s", obj["created"], outPath)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("init did not write %s: %v", outPath, err)
	}
}
