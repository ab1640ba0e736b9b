//go:build !windows

package launch

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

// WSLLauncher spawns the outer bridge's Windows-native binary from within
// the WSL subsystem by translating the subsystem path to a Windows path
// with wslpath, then exec'ing the translated path directly and detaching
// it into its own session so it survives the inner bridge exiting.
//
// Grounded on xfeldman/aegisvm's internal/daemon/manager.go spawn shape
// (exec.Command, attached log file, loosely tracked child), minus that
// file's crash-restart loop, which does not apply here (SPEC_FULL §4.4:
// the outer must survive inner restarts, so the inner does not own the
// outer's ongoing lifecycle).
type WSLLauncher struct {
	Log *logging.Logger
}

// SubsystemPathToHostPath shells out to wslpath -w, the standard WSL
// path translation utility, mirroring the "standard path-translation
// utility" referenced by the design.
func (w *WSLLauncher) SubsystemPathToHostPath(subsystemPath string) (string, error) {
	cmd := exec.Command("wslpath", "-w", subsystemPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", &bridgeerr.SpawnError{Msg: fmt.Sprintf("translating path %s", subsystemPath), Err: err}
	}
	return strings.TrimSpace(out.String()), nil
}

// HostPathToSubsystemPath shells out to wslpath -u, the inverse of the
// -w translation Launch performs, to turn a host-style (Windows) path
// reported by the outer bridge into the subsystem path this process
// must open locally.
func (w *WSLLauncher) HostPathToSubsystemPath(hostPath string) (string, error) {
	cmd := exec.Command("wslpath", "-u", hostPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", &bridgeerr.SpawnError{Msg: fmt.Sprintf("translating path %s", hostPath), Err: err}
	}
	return strings.TrimSpace(out.String()), nil
}

// Launch translates subsystemPath to its host-visible form and executes
// it there, directly: a Windows executable invoked from within WSL is
// handled transparently by the subsystem's binary-format interop, so no
// intermediate host shell needs to be named on the command line.
func (w *WSLLauncher) Launch(subsystemPath string, args []string) (ChildHandle, error) {
	hostPath, err := w.SubsystemPathToHostPath(subsystemPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(hostPath, args...)
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, &bridgeerr.SpawnError{Msg: fmt.Sprintf("launching %s", hostPath), Err: err}
	}
	w.Log.Infof("spawned outer bridge %s as pid %d", hostPath, cmd.Process.Pid)
	return &processHandle{cmd: cmd}, nil
}

type processHandle struct {
	cmd *exec.Cmd
}

func (h *processHandle) Pid() int { return h.cmd.Process.Pid }

func (h *processHandle) Signal() error {
	return h.cmd.Process.Signal(syscall.SIGTERM)
}

func (h *processHandle) Wait() error {
	return h.cmd.Wait()
}
