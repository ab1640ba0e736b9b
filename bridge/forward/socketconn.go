package forward

import (
	"net"
	"sync"
	"sync/atomic"
)

var connIDCounter int32

// AllocConnID returns a small monotonically-increasing id used only for
// log correlation, mirroring the teacher's share.AllocBasicConnID.
func AllocConnID() int32 {
	return atomic.AddInt32(&connIDCounter, 1)
}

// SocketConn wraps a net.Conn (unix or tcp) with a CloseWrite that half-
// closes the write side where the underlying type supports it. Grounded
// on the teacher's share.SocketConn; Splice uses CloseWrite so one
// direction reaching end-of-stream doesn't abort the other mid-transfer.
type SocketConn struct {
	net.Conn
	ID int32

	closeOnce sync.Once
	closeErr  error
}

// NewSocketConn wraps conn, allocating a fresh connection id.
func NewSocketConn(conn net.Conn) *SocketConn {
	return &SocketConn{Conn: conn, ID: AllocConnID()}
}

// CloseWrite half-closes the write side, if the underlying conn type
// supports it (unix and tcp connections both do); otherwise it fully
// closes the connection.
func (c *SocketConn) CloseWrite() error {
	switch t := c.Conn.(type) {
	case *net.UnixConn:
		return t.CloseWrite()
	case *net.TCPConn:
		return t.CloseWrite()
	default:
		return c.Close()
	}
}

// Close closes the underlying connection exactly once.
func (c *SocketConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Conn.Close()
	})
	return c.closeErr
}
