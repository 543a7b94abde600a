package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getfakerest/fakerest/pkg/config"
	"github.com/getfakerest/fakerest/pkg/engine"
	"github.com/getfakerest/fakerest/pkg/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// startFromConfig loads a config file the way the serve command does and runs
// a server from the loaded document.
func startFromConfig(t *testing.T, path string) string {
	t.Helper()

	doc, err := config.LoadDocument(path)
	require.NoError(t, err)

	srv := engine.NewServer(doc.Server.WithDefaults(), doc.Table(), engine.WithLogger(logging.Nop()))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	return srv.Addr()
}

// A full round trip: config file with inline routes, a routeFiles include,
// file and dl bodies anchored to the config directory, and header overrides,
// all verified over the wire.
func TestConfigFileToWire(t *testing.T) {
	dir := t.TempDir()
	port := GetFreePortSafe()

	writeFile(t, filepath.Join(dir, "routes", "extra.yaml"), `- path: /from-include
  method: GET
  statusCode: 200
  resultType: direct
  result: included body
`)
	writeFile(t, filepath.Join(dir, "data", "greeting.txt"), "hello from disk\n")
	writeFile(t, filepath.Join(dir, "data", "payload.json"), `{"from": "disk"}`)
	writeFile(t, filepath.Join(dir, "main.yaml"), fmt.Sprintf(`version: "1.0"
server:
  host: 127.0.0.1
  port: %d
  baseDir: .
routes:
  - path: /inline
    method: GET
    statusCode: 201
    resultType: direct
    result: inline body
  - path: /text
    method: GET
    statusCode: 200
    resultType: file
    result: ./data/greeting.txt
  - path: /download
    method: GET
    statusCode: 200
    resultType: dl
    result: ./data/payload.json
  - path: /override
    method: GET
    statusCode: 200
    resultType: direct
    result: '{"ok": true}'
    resultHeaders:
      - "Content-Type: application/json"
      - "X-Source: config"
routeFiles:
  - ./routes/*.yaml
`, port))

	addr := startFromConfig(t, filepath.Join(dir, "main.yaml"))

	t.Run("inline route with configured status", func(t *testing.T) {
		resp, err := httpGET(addr, "/inline")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 201 Created"), "unexpected response:\n%s", resp)
		assert.True(t, strings.HasSuffix(resp, "inline body"), "unexpected response:\n%s", resp)
	})

	t.Run("file body read relative to baseDir", func(t *testing.T) {
		resp, err := httpGET(addr, "/text")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
		assert.True(t, strings.HasSuffix(resp, "hello from disk\n"), "unexpected response:\n%s", resp)
	})

	t.Run("download headers derived from the extension", func(t *testing.T) {
		resp, err := httpGET(addr, "/download")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
		assert.Contains(t, resp, "Content-Type: application/json\r\n")
		assert.Contains(t, resp, "Accept-Ranges: None\r\n")
		assert.Contains(t, resp, "Content-Disposition: attachment; filename=payload.json\r\n")
		assert.True(t, strings.HasSuffix(resp, `{"from": "disk"}`), "unexpected response:\n%s", resp)
	})

	t.Run("config-declared headers win", func(t *testing.T) {
		resp, err := httpGET(addr, "/override")
		require.NoError(t, err)
		assert.Contains(t, resp, "Content-Type: application/json\r\n")
		assert.Contains(t, resp, "X-Source: config\r\n")
	})

	t.Run("included routes are appended after inline ones", func(t *testing.T) {
		resp, err := httpGET(addr, "/from-include")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
		assert.True(t, strings.HasSuffix(resp, "included body"), "unexpected response:\n%s", resp)
	})
}

// A file body that is missing at load time is only a warning; the check that
// matters happens per request.
func TestConfigFileBodyCheckedAtRequestTime(t *testing.T) {
	dir := t.TempDir()
	port := GetFreePortSafe()

	writeFile(t, filepath.Join(dir, "main.yaml"), fmt.Sprintf(`version: "1.0"
server:
  host: 127.0.0.1
  port: %d
  baseDir: .
routes:
  - path: /ghost
    method: GET
    statusCode: 200
    resultType: file
    result: ./data/not-there.txt
`, port))

	addr := startFromConfig(t, filepath.Join(dir, "main.yaml"))

	resp, err := httpGET(addr, "/ghost")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 500"), "unexpected response:\n%s", resp)
	assert.Contains(t, resp, "Internal Server Error")

	// Creating the file afterwards makes the same route serve it.
	writeFile(t, filepath.Join(dir, "data", "not-there.txt"), "late arrival")
	resp, err = httpGET(addr, "/ghost")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200"), "unexpected response:\n%s", resp)
	assert.True(t, strings.HasSuffix(resp, "late arrival"), "unexpected response:\n%s", resp)
}

// ${VAR} and ${VAR:-default} placeholders expand when the file is loaded.
func TestConfigEnvExpansion(t *testing.T) {
	t.Setenv("FAKEREST_TEST_BODY", "expanded body")

	dir := t.TempDir()
	port := GetFreePortSafe()

	writeFile(t, filepath.Join(dir, "main.yaml"), fmt.Sprintf(`version: "1.0"
server:
  host: 127.0.0.1
  port: %d
routes:
  - path: /env
    method: GET
    statusCode: 200
    resultType: direct
    result: ${FAKEREST_TEST_BODY}
  - path: /fallback
    method: GET
    statusCode: 200
    resultType: direct
    result: ${FAKEREST_TEST_UNSET:-fallback body}
`, port))

	addr := startFromConfig(t, filepath.Join(dir, "main.yaml"))

	resp, err := httpGET(addr, "/env")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp, "expanded body"), "unexpected response:\n%s", resp)

	resp, err = httpGET(addr, "/fallback")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp, "fallback body"), "unexpected response:\n%s", resp)
}
