// Package ipc is the local channel between clipflow CLI commands and a
// running clipflow daemon.
//
// The daemon listens on a Unix socket (a named pipe on Windows) and answers
// newline-delimited JSON requests (see package message). CLI sub-commands
// probe for it and fall back to working on the history store directly when
// it is absent.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
)

// SocketEnv overrides the socket path.
const SocketEnv = "CLIPFLOW_SOCKET"

// ErrNotRunning is returned when no daemon answers on the socket.
var ErrNotRunning = errors.New("clipflow daemon not running")

// ErrAlreadyRunning is returned by Listen when a live daemon owns the socket.
var ErrAlreadyRunning = errors.New("clipflow is already running")

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/clipflow.sock, else $TMPDIR/clipflow.sock
//   - Windows:       \\.\pipe\clipflow
//
// $CLIPFLOW_SOCKET overrides both (not on Windows).
func SocketPath() string {
	if s := os.Getenv(SocketEnv); s != "" && runtime.GOOS != "windows" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the IPC socket. A socket file left behind by
// a crashed daemon is removed; a live one is an error.
func Listen() (net.Listener, error) {
	path := SocketPath()
	if IsRunning() {
		return nil, fmt.Errorf("listen %s: %w", path, ErrAlreadyRunning)
	}
	removeStale(path)
	ln, err := listenIPC(path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the daemon, returning ErrNotRunning if nothing answers.
func Dial() (net.Conn, error) {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return c, nil
}
