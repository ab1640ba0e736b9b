//go:build !windows

package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// processProbeSignal is sent to test liveness without affecting the
// target process (signal 0 performs error checking only, per kill(2)).
var processProbeSignal = syscall.Signal(0)

// bridgeExecutableMarker is matched against a live pid's argv0 basename
// to confirm it actually identifies a gpg-bridge instance rather than
// an unrelated process that happens to have reused a recycled pid.
const bridgeExecutableMarker = "gpg-bridge"

// processIsBridge reads /proc/<pid>/cmdline (a NUL-separated argv) and
// reports whether argv0's basename looks like this bridge's binary.
// A package-level var so tests can substitute a fake without a real
// gpg-bridge binary on disk.
var processIsBridge = func(pid int) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return false
	}
	argv0 := string(data)
	if i := strings.IndexByte(argv0, 0); i >= 0 {
		argv0 = argv0[:i]
	}
	return strings.Contains(filepath.Base(argv0), bridgeExecutableMarker)
}
