// Package config holds the immutable configuration record shared by the
// inner and outer bridge processes, populated from CLI flags rather than
// a config file (see cmd/gpg-bridge).
package config

import (
	"fmt"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

// Mode selects which half of the pair a process runs as.
type Mode int

const (
	Inner Mode = iota
	Outer
)

func (m Mode) String() string {
	if m == Outer {
		return "outer"
	}
	return "inner"
}

// Config is the full configuration surface, immutable once constructed.
// All fields are described in the external interfaces configuration
// table.
type Config struct {
	Mode Mode

	RemoteAddress  string // outer's address as seen by inner
	WindowsAddress string // outer's bind address
	BasePort       int
	EnableSsh      bool

	NoncefilePath string
	LogfilePath   string
	PidfilePath   string
	Daemonize     bool
	LogLevel      logging.Level

	// Forwarded from inner to outer at spawn time.
	WindowsLogfilePath string
	WindowsPidfilePath string

	// Diagnostics surface (SPEC_FULL §4.6); off unless LogLevel <= DEBUG.
	DiagnosticsEnabled bool
}

// Default values matching the external interfaces table.
const (
	DefaultBasePort       = 6910
	DefaultRemoteAddress  = "127.0.0.1"
	DefaultWindowsAddress = "0.0.0.0"
)

// Validate enforces the cross-field invariants called out in the error
// handling design: daemonizing requires a pidfile.
func (c *Config) Validate() error {
	if c.Daemonize && c.PidfilePath == "" {
		return &bridgeerr.ConfigError{Msg: "daemonize requires pidfile_path"}
	}
	if c.BasePort <= 0 || c.BasePort > 65531 {
		return &bridgeerr.ConfigError{Msg: fmt.Sprintf("invalid base_port %d", c.BasePort)}
	}
	if c.Mode == Outer && c.NoncefilePath == "" {
		return &bridgeerr.ConfigError{Msg: "noncefile_path is required in outer mode"}
	}
	return nil
}
