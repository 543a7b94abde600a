package performance

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// TestServer represents a fakerest server started via the CLI binary.
// Benchmarks go through the real binary and real TCP connections so the
// numbers reflect what users actually see, not an in-process shortcut.
type TestServer struct {
	Port       int
	cmd        *exec.Cmd
	binaryPath string
	configPath string
}

var (
	buildMu    sync.Mutex
	binaryPath string
)

// ensureBinary builds the fakerest binary, rebuilding if it doesn't exist.
func ensureBinary() (string, error) {
	buildMu.Lock()
	defer buildMu.Unlock()

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	// Navigate to project root (from tests/performance)
	projectRoot := filepath.Join(wd, "..", "..")
	binaryPath = filepath.Join(projectRoot, "fakerest_bench")

	if _, err := os.Stat(binaryPath); err == nil {
		return binaryPath, nil
	}

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fakerest")
	cmd.Dir = projectRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to build CLI: %w\n%s", err, out)
	}

	return binaryPath, nil
}

// writeRouteConfig writes a config file with numRoutes GET routes plus a
// /ping route used by the readiness probe. Routes are /api/resource/0 through
// /api/resource/N-1 so benchmarks can pick a hit anywhere in the scan order.
func writeRouteConfig(dir string, numRoutes int) (string, error) {
	var sb strings.Builder
	sb.WriteString("version: \"1.0\"\n")
	sb.WriteString("routes:\n")
	sb.WriteString("  - path: /ping\n")
	sb.WriteString("    method: GET\n")
	sb.WriteString("    statusCode: 200\n")
	sb.WriteString("    resultType: direct\n")
	sb.WriteString("    result: pong\n")
	for i := 0; i < numRoutes; i++ {
		fmt.Fprintf(&sb, "  - path: /api/resource/%d\n", i)
		sb.WriteString("    method: GET\n")
		sb.WriteString("    statusCode: 200\n")
		sb.WriteString("    resultType: direct\n")
		fmt.Fprintf(&sb, "    result: '{\"id\": %d, \"name\": \"resource-%d\"}'\n", i, i)
	}

	path := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// StartTestServer starts a fakerest server via the CLI with numRoutes routes
// and returns once it answers on /ping.
func StartTestServer(port, numRoutes int) (*TestServer, error) {
	binary, err := ensureBinary()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "fakerest-perf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	configPath, err := writeRouteConfig(dir, numRoutes)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	ts := &TestServer{
		Port:       port,
		binaryPath: binary,
		configPath: configPath,
	}

	ts.cmd = exec.Command(binary, "serve",
		"--config", configPath,
		"--port", fmt.Sprintf("%d", port),
		"--log-level", "error",
	)
	ts.cmd.Stdout = io.Discard
	ts.cmd.Stderr = io.Discard

	if err := ts.cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	if err := ts.waitForReady(5 * time.Second); err != nil {
		ts.Stop()
		return nil, err
	}

	return ts, nil
}

// waitForReady polls /ping until the server answers 200.
func (ts *TestServer) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := ts.Get("/ping")
		if err == nil && strings.HasPrefix(resp, "HTTP/1.1 200") {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

// Stop gracefully stops the server and cleans up resources.
func (ts *TestServer) Stop() error {
	if ts.configPath != "" {
		defer os.RemoveAll(filepath.Dir(ts.configPath))
	}

	if ts.cmd == nil || ts.cmd.Process == nil {
		return nil
	}

	// SIGTERM for graceful shutdown, SIGKILL if that fails
	if err := ts.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		ts.cmd.Process.Kill()
	}

	done := make(chan error, 1)
	go func() {
		done <- ts.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		ts.cmd.Process.Kill()
		return fmt.Errorf("server did not stop gracefully")
	}
}

// Addr returns the host:port the server listens on.
func (ts *TestServer) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", ts.Port)
}

// Get performs one raw HTTP exchange against the server and returns the full
// response text. The server closes the connection after answering, so each
// call dials fresh and reads to EOF.
func (ts *TestServer) Get(path string) (string, error) {
	conn, err := net.DialTimeout("tcp", ts.Addr(), 2*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(conn, "GET %s HTTP/1.1\r\nHost: %s\r\n\r\n", path, ts.Addr()); err != nil {
		return "", err
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
