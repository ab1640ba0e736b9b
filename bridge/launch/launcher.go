// Package launch abstracts cross-environment process spawning so the
// inner bridge's coordinator can start the outer bridge on the host
// without hard-coding the WSL path-translation and exec details,
// per the design notes' explicit call for a HostLauncher capability.
package launch

// ChildHandle represents a spawned child process; the pairing
// coordinator tracks it only to optionally signal it on shutdown.
type ChildHandle interface {
	Pid() int
	// Signal delivers a termination request to the child. The inner
	// bridge does not call it on shutdown and has no option to do so,
	// so the outer keeps running across inner restarts.
	Signal() error
	// Wait blocks until the child exits.
	Wait() error
}

// HostLauncher launches the outer bridge binary in the host environment
// given a subsystem-visible path to it and the arguments to pass.
type HostLauncher interface {
	Launch(subsystemPath string, args []string) (ChildHandle, error)

	// SubsystemPathToHostPath translates a subsystem-visible path into
	// the equivalent host-style path, the same translation Launch
	// applies internally to the executable path. Used to compute a
	// host-style default nonce file path from the subsystem's own view
	// of the agent's home directory.
	SubsystemPathToHostPath(subsystemPath string) (string, error)

	// HostPathToSubsystemPath translates a host-style path (as reported by
	// the outer bridge, e.g. the nonce file's path under the agent's
	// home directory) into the equivalent subsystem-style path this
	// process can open directly. The inverse of SubsystemPathToHostPath.
	HostPathToSubsystemPath(hostPath string) (string, error)
}
