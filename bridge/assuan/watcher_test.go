package assuan

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sammck/gpg-bridge/bridge/logging"
)

func TestWatcherCachesUntilRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "S.gpg-agent.port")

	write := func(port string) {
		nonce := make([]byte, NonceSize)
		data := append([]byte(port+"\n"), nonce...)
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("writing descriptor: %v", err)
		}
	}
	write("1111")

	log := logging.NewLogger("test", logging.DEBUG, io.Discard)
	w := NewWatcher(path, log)
	defer w.Close()

	d1, err := w.Read()
	if err != nil {
		t.Fatalf("first Read: %v", err)
	}
	if d1.Port != 1111 {
		t.Fatalf("port = %d, want 1111", d1.Port)
	}

	// Overwrite the underlying file without going through Invalidate;
	// a cached Watcher may still serve the stale value until an
	// fsnotify event (or an explicit Invalidate) arrives, so exercise
	// the explicit invalidation path a caller uses on connect failure.
	write("2222")
	w.Invalidate()

	d2, err := w.Read()
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	if d2.Port != 2222 {
		t.Fatalf("port = %d, want 2222 after invalidation", d2.Port)
	}
}
