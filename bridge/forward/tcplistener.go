package forward

import (
	"fmt"
	"net"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// TCPListener serves one TCP port for a single class on the outer
// (host) side.
type TCPListener struct {
	Addr     string
	listener *net.TCPListener
}

// NewTCPListener binds addr (host:port).
func NewTCPListener(addr string) (*TCPListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, &bridgeerr.ConfigError{Msg: fmt.Sprintf("resolving tcp addr %s", addr), Err: err}
	}
	l, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, &bridgeerr.ConfigError{Msg: fmt.Sprintf("listening on %s", addr), Err: err}
	}
	return &TCPListener{Addr: addr, listener: l}, nil
}

// Accept blocks until a client connects, returning a wrapped
// *SocketConn.
func (l *TCPListener) Accept() (*SocketConn, error) {
	conn, err := l.listener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	return NewSocketConn(conn), nil
}

func (l *TCPListener) Close() error {
	return l.listener.Close()
}

// Port returns the port this listener is bound to.
func (l *TCPListener) Port() int {
	return l.listener.Addr().(*net.TCPAddr).Port
}
