// Package integration provides integration tests for the fakerest server.
package integration

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// Global port counter for all integration tests to avoid port collisions
// when tests run in parallel. Starting at 30000 to avoid common ports
// and give a wide range for all tests.
var globalPortCounter uint32 = 30000

// GetFreePortSafe returns a unique port for testing that won't collide
// with other tests running in parallel. This is safer than asking the OS
// for a port, which can hand the same one to concurrent callers.
func GetFreePortSafe() int {
	// Try to find an actually free port in our range
	for attempts := 0; attempts < 100; attempts++ {
		port := int(atomic.AddUint32(&globalPortCounter, 1))
		if isPortFree(port) {
			return port
		}
	}
	// Fallback to the atomic counter value even if not verified free
	return int(atomic.AddUint32(&globalPortCounter, 1))
}

// isPortFree checks if a port is available for binding
func isPortFree(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// rawExchange writes raw to a fresh connection and reads the response to EOF.
// The server closes the connection after one response, so EOF marks the end
// of the exchange.
func rawExchange(addr, raw string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(conn, raw); err != nil {
		return "", err
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// httpGET performs a minimal GET exchange against addr.
func httpGET(addr, path string) (string, error) {
	return rawExchange(addr, fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\n\r\n", path, addr))
}
