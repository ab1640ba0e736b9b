//go:build windows

package lifecycle

import (
	"os"
	"os/exec"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// Daemonize on Windows detaches by re-launching the current executable
// with CREATE_NO_WINDOW/DETACHED_PROCESS creation flags instead of a
// POSIX session detach, since Windows has no fork/setsid equivalent.
func Daemonize(logfilePath string) error {
	if os.Getenv("GPG_BRIDGE_DAEMONIZED") == "1" {
		return nil
	}

	stdout := os.Stdout
	stderr := os.Stderr
	if logfilePath != "" {
		f, err := os.OpenFile(logfilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return &bridgeerr.ConfigError{Msg: "opening logfile_path", Err: err}
		}
		defer f.Close()
		stdout = f
		stderr = f
	}

	exePath, err := os.Executable()
	if err != nil {
		return &bridgeerr.ConfigError{Msg: "resolving executable path", Err: err}
	}

	cmd := exec.Command(exePath, os.Args[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), "GPG_BRIDGE_DAEMONIZED=1")
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return &bridgeerr.ConfigError{Msg: "re-exec for daemonize", Err: err}
	}
	os.Exit(0)
	return nil
}
