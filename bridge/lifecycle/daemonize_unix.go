//go:build !windows

package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// Daemonize detaches the current process from its controlling terminal by
// re-executing itself as a new session leader (a double fork's effect,
// achieved in Go by re-exec since the runtime cannot safely fork without
// exec). Standard input is redirected to /dev/null; standard output and
// error are redirected to logfilePath if set, else /dev/null.
//
// The caller's process exits after the child is launched; the child
// continues running main() with GPG_BRIDGE_DAEMONIZED=1 set so it does not
// re-daemonize.
func Daemonize(logfilePath string) error {
	if os.Getenv("GPG_BRIDGE_DAEMONIZED") == "1" {
		return nil
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return &bridgeerr.ConfigError{Msg: "opening /dev/null", Err: err}
	}
	defer devNull.Close()

	stdout := devNull
	stderr := devNull
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
	cmd.Stdin = devNull
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), "GPG_BRIDGE_DAEMONIZED=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return &bridgeerr.ConfigError{Msg: "re-exec for daemonize", Err: err}
	}
	fmt.Fprintf(os.Stderr, "daemonized as pid %d\n", cmd.Process.Pid)
	os.Exit(0)
	return nil
}
