package pairing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateProducesDistinctNonces(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.Equal(b) {
		t.Fatalf("two independently generated nonces were equal: %v", a)
	}
}

func TestNonceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonce")

	n, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := n.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !n.Equal(got) {
		t.Fatalf("round-tripped nonce differs: wrote %v, read %v", n, got)
	}
}

func TestReadFileTooShort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonce")
	if err := os.WriteFile(path, make([]byte, 15), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Fatalf("expected error reading a 15-byte nonce file")
	}
}

func TestRemoveFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonce")
	if err := RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile on missing file: %v", err)
	}
	n, _ := Generate()
	if err := n.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if err := RemoveFile(path); err != nil {
		t.Fatalf("second RemoveFile should be a no-op: %v", err)
	}
}
