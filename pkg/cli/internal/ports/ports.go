// Package ports provides port availability checking.
package ports

import (
	"net"
	"strconv"
)

// IsAvailable checks if host:port can be bound right now.
// Returns true if the port is available, false otherwise.
func IsAvailable(host string, port int) bool {
	return Check(host, port) == nil
}

// Check attempts a bind on host:port and returns the listen error if it
// fails. The probe uses the same address the server will, so a port held
// only on another interface does not trip it.
func Check(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	_ = ln.Close()
	return nil
}
