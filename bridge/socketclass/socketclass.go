// Package socketclass defines the four logical GPG/SSH agent endpoints
// this system forwards, and their fixed port offsets.
package socketclass

import "fmt"

// Mode describes how a class's outer-bridge forwarder reaches the native
// agent.
type Mode int

const (
	// Assuan classes read an Assuan-style descriptor file and connect to
	// a loopback TCP port advertised by it.
	Assuan Mode = iota
	// WindowsMessageCopy classes speak the Windows message-copy IPC.
	WindowsMessageCopy
)

// Class is one of the four socket classes.
type Class struct {
	// Name is the canonical name used to query the agent toolchain for
	// this class's filesystem path (subsystem side) or endpoint (host
	// side).
	Name string
	// Index maps to base_port + Index on the wire.
	Index int
	// ForwardMode selects the outer-bridge forwarder implementation.
	ForwardMode Mode
}

var (
	AgentMain    = Class{Name: "agent", Index: 0, ForwardMode: Assuan}
	AgentExtra   = Class{Name: "agent-extra", Index: 1, ForwardMode: Assuan}
	AgentBrowser = Class{Name: "agent-browser", Index: 2, ForwardMode: Assuan}
	AgentSsh     = Class{Name: "agent-ssh", Index: 3, ForwardMode: WindowsMessageCopy}
)

// All returns the four classes in stable, index order.
func All() []Class {
	return []Class{AgentMain, AgentExtra, AgentBrowser, AgentSsh}
}

// Enabled returns the classes that apply given whether the SSH class is
// turned on.
func Enabled(enableSsh bool) []Class {
	classes := []Class{AgentMain, AgentExtra, AgentBrowser}
	if enableSsh {
		classes = append(classes, AgentSsh)
	}
	return classes
}

// Port computes the TCP port assigned to this class given the configured
// base port.
func (c Class) Port(basePort int) int {
	return basePort + c.Index
}

func (c Class) String() string {
	return fmt.Sprintf("%s[%d]", c.Name, c.Index)
}
