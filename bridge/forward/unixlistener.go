package forward

import (
	"fmt"
	"net"
	"os"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// UnixListener serves one filesystem socket for a single class on the
// inner (subsystem) side. Grounded on the teacher's
// share.UnixStubEndpoint lazy-listener shape, with the pre-existing-
// non-socket-path check the design requires added (the teacher's
// version does not perform this check).
type UnixListener struct {
	Path     string
	listener *net.UnixListener
}

// NewUnixListener prepares path for listening: if a socket already
// exists there it is unlinked; if a non-socket file exists there,
// ConfigError is returned without touching it.
func NewUnixListener(path string) (*UnixListener, error) {
	if err := prepareSocketPath(path); err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, &bridgeerr.ConfigError{Msg: fmt.Sprintf("resolving unix addr %s", path), Err: err}
	}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, &bridgeerr.ConfigError{Msg: fmt.Sprintf("listening on %s", path), Err: err}
	}
	return &UnixListener{Path: path, listener: l}, nil
}

func prepareSocketPath(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &bridgeerr.ConfigError{Msg: fmt.Sprintf("stat %s", path), Err: err}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return &bridgeerr.ConfigError{Msg: fmt.Sprintf("%s exists and is not a socket", path)}
	}
	if err := os.Remove(path); err != nil {
		return &bridgeerr.ConfigError{Msg: fmt.Sprintf("removing stale socket %s", path), Err: err}
	}
	return nil
}

// Accept blocks until a client connects, returning a wrapped
// *SocketConn.
func (l *UnixListener) Accept() (*SocketConn, error) {
	conn, err := l.listener.AcceptUnix()
	if err != nil {
		return nil, err
	}
	return NewSocketConn(conn), nil
}

// Close closes the listener and removes the socket file.
func (l *UnixListener) Close() error {
	err := l.listener.Close()
	_ = os.Remove(l.Path)
	return err
}
