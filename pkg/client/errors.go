package client

import (
	"errors"
	"io/fs"
	"syscall"
)

var (
	// ErrDaemonNotRunning is returned when nothing listens on the socket
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the socket belongs to another user
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when 404 is returned from the daemon
	ErrNotFound = errors.New("404 not found")
)

// isNotRunning reports a missing socket, or one left behind by a daemon
// that exited.
func isNotRunning(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
