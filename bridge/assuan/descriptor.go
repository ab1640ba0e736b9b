// Package assuan reads the small descriptor files the native GPG agent
// writes to advertise its loopback TCP endpoints, and watches them for
// rotation.
package assuan

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
)

// NonceSize is the length of the nonce embedded in an Assuan descriptor.
const NonceSize = 16

// Descriptor is a parsed Assuan-style endpoint descriptor: an ASCII port
// number, a single newline, then exactly 16 raw nonce bytes.
type Descriptor struct {
	Port  int
	Nonce [NonceSize]byte
}

// ParseDescriptor parses the raw contents of a descriptor file. Any
// deviation from the fixed layout is a DescriptorError, matching the
// boundary test for a 15-byte nonce.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, &bridgeerr.DescriptorError{Msg: "missing newline separator"}
	}
	portBytes := data[:nl]
	rest := data[nl+1:]
	if len(rest) != NonceSize {
		return nil, &bridgeerr.DescriptorError{Msg: fmt.Sprintf("nonce is %d bytes, want %d", len(rest), NonceSize)}
	}
	var port int
	if _, err := fmt.Sscanf(string(portBytes), "%d", &port); err != nil {
		return nil, &bridgeerr.DescriptorError{Msg: "unparseable port", Err: err}
	}
	if port <= 0 || port > 65535 {
		return nil, &bridgeerr.DescriptorError{Msg: fmt.Sprintf("port %d out of range", port)}
	}
	d := &Descriptor{Port: port}
	copy(d.Nonce[:], rest)
	return d, nil
}

// ReadDescriptor reads and parses the descriptor file at path.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &bridgeerr.DescriptorError{Msg: fmt.Sprintf("reading %s", path), Err: err}
	}
	return ParseDescriptor(data)
}
