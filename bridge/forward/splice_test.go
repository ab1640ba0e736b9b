package forward

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"
)

func TestSpliceRoundTrip(t *testing.T) {
	aClient, aServer := net.Pipe()
	bClient, bServer := net.Pipe()

	done := make(chan struct{})
	go func() {
		Splice(aServer, bServer)
		close(done)
	}()

	want := []byte("hello from the client side")
	go func() {
		aClient.Write(want)
	}()

	buf := make([]byte, len(want))
	if _, err := io.ReadFull(bClient, buf); err != nil {
		t.Fatalf("reading spliced bytes: %v", err)
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got %q, want %q", buf, want)
	}

	reply := []byte("hello back")
	if _, err := bClient.Write(reply); err != nil {
		t.Fatalf("writing reply: %v", err)
	}
	buf2 := make([]byte, len(reply))
	if _, err := io.ReadFull(aClient, buf2); err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	if !bytes.Equal(buf2, reply) {
		t.Fatalf("got %q, want %q", buf2, reply)
	}

	aClient.Close()
	bClient.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Splice did not return after both ends closed")
	}
}

func TestCopyBoundedStopsOnEOF(t *testing.T) {
	src := bytes.NewReader([]byte("some bytes"))
	var dst bytes.Buffer
	n := copyBounded(&dst, src)
	if n != int64(dst.Len()) {
		t.Fatalf("returned count %d does not match written bytes %d", n, dst.Len())
	}
	if dst.String() != "some bytes" {
		t.Fatalf("got %q", dst.String())
	}
}
