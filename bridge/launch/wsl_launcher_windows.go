//go:build windows

package launch

import "github.com/sammck/gpg-bridge/bridge/logging"

// WSLLauncher on a Windows build is present only so bridge/launch
// compiles as part of a Windows-targeted outer bridge binary; the outer
// bridge never spawns anything, so every method panics if reached.
type WSLLauncher struct {
	Log *logging.Logger
}

func (w *WSLLauncher) Launch(subsystemPath string, args []string) (ChildHandle, error) {
	panic("WSLLauncher.Launch is not supported on the outer (Windows) side")
}

func (w *WSLLauncher) SubsystemPathToHostPath(subsystemPath string) (string, error) {
	panic("WSLLauncher.SubsystemPathToHostPath is not supported on the outer (Windows) side")
}

func (w *WSLLauncher) HostPathToSubsystemPath(hostPath string) (string, error) {
	panic("WSLLauncher.HostPathToSubsystemPath is not supported on the outer (Windows) side")
}
