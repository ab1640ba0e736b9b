package outer

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/sammck/gpg-bridge/bridge/config"
	"github.com/sammck/gpg-bridge/bridge/forward"
	"github.com/sammck/gpg-bridge/bridge/logging"
	"github.com/sammck/gpg-bridge/bridge/pairing"
	"github.com/sammck/gpg-bridge/bridge/socketclass"
)

func testLogger() *logging.Logger {
	return logging.NewLogger("test", logging.DEBUG, io.Discard)
}

// TestServeClientRejectsWrongNonce exercises the invariant that no
// payload byte is ever forwarded when the presented nonce does not match
// the outer's in-memory nonce: the client connection should simply be
// closed with nothing echoed back.
func TestServeClientRejectsWrongNonce(t *testing.T) {
	cfg := &config.Config{Mode: config.Outer, BasePort: 6910}
	b := New(cfg, testLogger())
	correct, err := pairing.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b.nonce = correct

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		b.serveClient(socketclass.AgentMain, forward.NewSocketConn(serverConn))
		close(done)
	}()

	wrong, err := pairing.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Guard against the vanishingly unlikely case the two random
	// nonces collide, which would invalidate the test's premise.
	if wrong.Equal(correct) {
		t.Skip("generated nonces collided")
	}

	clientConn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := clientConn.Write(wrong[:]); err != nil {
		t.Fatalf("writing wrong nonce: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("serveClient did not return after auth failure")
	}

	// The connection should now be closed from the server side; further
	// reads must not return any forwarded payload.
	clientConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 1)
	if n, err := clientConn.Read(buf); err == nil && n > 0 {
		t.Fatalf("expected no bytes forwarded after failed auth, got %d", n)
	}
}
