package lifecycle

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestWriteReadRemovePIDFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "bridge.pid")

	if err := WritePIDFile(path); err != nil {
		t.Fatalf("WritePIDFile: %v", err)
	}

	pid, err := ReadPIDFile(path)
	if err != nil {
		t.Fatalf("ReadPIDFile: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("pid = %d, want %d", pid, os.Getpid())
	}

	if err := RemovePIDFile(path); err != nil {
		t.Fatalf("RemovePIDFile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file still exists after removal")
	}
	if err := RemovePIDFile(path); err != nil {
		t.Fatalf("RemovePIDFile should be idempotent: %v", err)
	}
}

func TestIsRunningNoFile(t *testing.T) {
	dir := t.TempDir()
	running, _, err := IsRunning(filepath.Join(dir, "missing.pid"))
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Fatalf("expected not running when pid file is absent")
	}
}

func TestIsRunningLiveProcess(t *testing.T) {
	orig := processIsBridge
	processIsBridge = func(pid int) bool { return true }
	defer func() { processIsBridge = orig }()

	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.pid")
	if err := WritePIDFile(path); err != nil {
		t.Fatalf("WritePIDFile: %v", err)
	}
	running, pid, err := IsRunning(path)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Fatalf("running=%v pid=%d, want true/%d", running, pid, os.Getpid())
	}
}

// TestIsRunningRejectsRecycledPid exercises the command-line check: a
// live pid whose command line does not identify a bridge instance must
// not be treated as "already running," and the stale pid file should be
// cleaned up just as if the process were dead.
func TestIsRunningRejectsRecycledPid(t *testing.T) {
	orig := processIsBridge
	processIsBridge = func(pid int) bool { return false }
	defer func() { processIsBridge = orig }()

	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.pid")
	if err := WritePIDFile(path); err != nil {
		t.Fatalf("WritePIDFile: %v", err)
	}
	running, _, err := IsRunning(path)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Fatalf("expected a live but non-bridge pid to be reported as not running")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file for a non-bridge process should have been removed")
	}
}

func TestIsRunningStalePidIsCleanedUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.pid")
	// A pid that is extremely unlikely to be alive.
	if err := os.WriteFile(path, []byte(strconv.Itoa(1<<30)), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	running, _, err := IsRunning(path)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Fatalf("expected stale pid to be reported as not running")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("stale pid file should have been removed")
	}
}
