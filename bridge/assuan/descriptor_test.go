package assuan

import (
	"errors"
	"testing"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

func TestParseDescriptorValid(t *testing.T) {
	nonce := make([]byte, NonceSize)
	for i := range nonce {
		nonce[i] = byte(i)
	}
	data := append([]byte("9999\n"), nonce...)

	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if d.Port != 9999 {
		t.Fatalf("port = %d, want 9999", d.Port)
	}
	if !bytesEqual(d.Nonce[:], nonce) {
		t.Fatalf("nonce mismatch: got %v, want %v", d.Nonce, nonce)
	}
}

func TestParseDescriptorShortNonce(t *testing.T) {
	data := append([]byte("9999\n"), make([]byte, NonceSize-1)...)
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatalf("expected error for a %d-byte nonce", NonceSize-1)
	}
	var de *bridgeerr.DescriptorError
	if !errors.As(err, &de) {
		t.Fatalf("expected *bridgeerr.DescriptorError, got %T: %v", err, err)
	}
}

func TestParseDescriptorMissingNewline(t *testing.T) {
	data := make([]byte, NonceSize+4)
	if _, err := ParseDescriptor(data); err == nil {
		t.Fatalf("expected error for a descriptor with no newline")
	}
}

func TestParseDescriptorBadPort(t *testing.T) {
	data := append([]byte("not-a-port\n"), make([]byte, NonceSize)...)
	if _, err := ParseDescriptor(data); err == nil {
		t.Fatalf("expected error for an unparseable port")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
