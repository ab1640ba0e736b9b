package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// WritePIDFile writes the current process id to path, creating parent
// directories as needed. Grounded on nupi-ai's daemonruntime.WritePIDFile.
func WritePIDFile(path string) error {
	if path == "" {
		return &bridgeerr.ConfigError{Msg: "pidfile_path is empty"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return &bridgeerr.ConfigError{Msg: "creating pidfile directory", Err: err}
	}
	content := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(content), 0600)
}

// RemovePIDFile removes the pid file; a missing file is not an error,
// matching the idempotent-cleanup requirement.
func RemovePIDFile(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadPIDFile reads and parses the pid stored at path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// IsRunning reports whether a live process identified by the pid file at
// path appears to already be an instance of this bridge. A stale pid file
// (process no longer alive) is removed and false is returned. Grounded on
// nupi-ai/nupi/internal/daemon.IsRunning + procutil.IsProcessAlive.
func IsRunning(path string) (bool, int, error) {
	if path == "" {
		return false, 0, nil
	}
	pid, err := ReadPIDFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	if !isProcessAlive(pid) {
		_ = RemovePIDFile(path)
		return false, 0, nil
	}
	return true, pid, nil
}

// isProcessAlive reports whether pid is both alive and, per the pid-file
// record's contract, actually a gpg-bridge instance: a bare liveness
// probe alone would treat an unrelated process that reused a recycled
// pid as "already running."
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// os.FindProcess always succeeds on POSIX; a signal 0 probe is the
	// portable liveness check. On Windows FindProcess itself opens the
	// process and fails for a dead pid, and Process.Signal supports only
	// os.Kill, so the probe is skipped there.
	if runtime.GOOS != "windows" {
		if err := proc.Signal(processProbeSignal); err != nil {
			return false
		}
	}
	return processIsBridge(pid)
}
