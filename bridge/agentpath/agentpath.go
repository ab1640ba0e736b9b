// Package agentpath resolves the canonical filesystem path (subsystem
// side) or Assuan descriptor path (host side) for a socket class by
// querying the agent toolchain's directory-reporting command, the way
// xfeldman/aegisvm/internal/daemon/manager.go shells out to a sidecar
// binary and parses its stdout.
package agentpath

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sammck/gpg-bridge/bridge/socketclass"
)

// dirsCommand is the toolchain query used to discover the agent's home
// directory (the real-world analogue of `gpgconf --list-dirs
// homedir`), overridable for tests.
var dirsCommand = []string{"gpgconf", "--list-dirs", "homedir"}

// HomeDir shells out to the agent toolchain to discover its home
// directory.
func HomeDir() (string, error) {
	cmd := exec.Command(dirsCommand[0], dirsCommand[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("querying agent home directory: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// SocketPath returns the canonical filesystem socket path for a class,
// relative to the agent's home directory. Grounded on the fixed
// per-class socket names GnuPG assigns (S.gpg-agent,
// S.gpg-agent.extra, S.gpg-agent.browser, S.gpg-agent.ssh).
func SocketPath(homeDir string, class socketclass.Class) string {
	switch class.Name {
	case socketclass.AgentMain.Name:
		return filepath.Join(homeDir, "S.gpg-agent")
	case socketclass.AgentExtra.Name:
		return filepath.Join(homeDir, "S.gpg-agent.extra")
	case socketclass.AgentBrowser.Name:
		return filepath.Join(homeDir, "S.gpg-agent.browser")
	case socketclass.AgentSsh.Name:
		return filepath.Join(homeDir, "S.gpg-agent.ssh")
	default:
		return filepath.Join(homeDir, "S."+class.Name)
	}
}

// DescriptorPath returns the Assuan descriptor path the outer bridge
// reads to locate the agent's loopback TCP port for a class.
func DescriptorPath(homeDir string, class socketclass.Class) string {
	return SocketPath(homeDir, class) + ".port"
}

// DefaultNoncefileName is the filename the pairing nonce defaults to
// under the agent's home directory when no explicit path is configured.
const DefaultNoncefileName = "gpg-bridge.nonce"

// DefaultNoncefilePath returns the platform-specific default pairing
// nonce file path under homeDir.
func DefaultNoncefilePath(homeDir string) string {
	return filepath.Join(homeDir, DefaultNoncefileName)
}
