// Package pairing implements the shared-nonce authentication scheme used
// to let the inner bridge prove it is the co-located counterpart of a
// given outer bridge. Grounded on the nonce exchange in
// other_examples/buptczq-WinCryptSSHAgent's cygwin compatibility shim,
// adapted from a UUID-based handshake to a flat 16-byte nonce per the
// external interfaces design.
package pairing

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// NonceSize is the fixed length of the pairing nonce, in bytes.
const NonceSize = 16

// Nonce is the shared secret both bridges present to authenticate a
// connection.
type Nonce [NonceSize]byte

// Generate produces a new cryptographically random nonce.
func Generate() (Nonce, error) {
	var n Nonce
	if _, err := rand.Read(n[:]); err != nil {
		return n, fmt.Errorf("generating pairing nonce: %w", err)
	}
	return n, nil
}

// Equal reports whether a and b are the same nonce, using a
// constant-time comparison since this guards an authentication check.
func (n Nonce) Equal(other Nonce) bool {
	return subtle.ConstantTimeCompare(n[:], other[:]) == 1
}

// WriteFile persists the nonce to path with file mode 0600, creating
// parent directories (mode 0700) as needed. The mode makes the file
// owner-only on POSIX; on Windows it sets no ACL, so the file gets the
// access its directory grants. Called once by the outer bridge at startup.
func (n Nonce) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return &bridgeerr.ConfigError{Msg: "creating noncefile directory", Err: err}
	}
	if err := os.WriteFile(path, n[:], 0600); err != nil {
		return &bridgeerr.ConfigError{Msg: "writing noncefile", Err: err}
	}
	return nil
}

// ReadFile reads a previously written nonce file. A short read is
// reported as an error so callers can abandon the connecting worker per
// the boundary test "nonce file shorter than 16 bytes".
func ReadFile(path string) (Nonce, error) {
	var n Nonce
	data, err := os.ReadFile(path)
	if err != nil {
		return n, &bridgeerr.AuthError{Msg: fmt.Sprintf("reading noncefile %s: %v", path, err)}
	}
	if len(data) < NonceSize {
		return n, &bridgeerr.AuthError{Msg: fmt.Sprintf("noncefile %s too short: %d bytes", path, len(data))}
	}
	copy(n[:], data[:NonceSize])
	return n, nil
}

// RemoveFile removes the nonce file; a missing file is not an error,
// matching the idempotent-cleanup requirement.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
