// Package bridgeerr defines the distinct error kinds the design calls out,
// each wrapping an underlying cause so callers can dispatch with
// errors.As/errors.Is instead of matching on strings.
package bridgeerr

import "fmt"

// ConfigError signals a missing required option, an unparseable value, or
// a pre-existing non-socket file at a canonical socket path.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SpawnError signals a failure to translate a path or launch the outer
// bridge's host interpreter.
type SpawnError struct {
	Msg string
	Err error
}

func (e *SpawnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spawn error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("spawn error: %s", e.Msg)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// AuthError signals a wrong or short pairing nonce on an accepted
// connection.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth error: %s", e.Msg) }

// DescriptorError signals a missing, truncated, or malformed Assuan
// descriptor file.
type DescriptorError struct {
	Msg string
	Err error
}

func (e *DescriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("descriptor error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("descriptor error: %s", e.Msg)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// IoError wraps a connect timeout, reset, or broken pipe on a spliced
// stream.
type IoError struct {
	Msg string
	Err error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("io error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("io error: %s", e.Msg)
}

func (e *IoError) Unwrap() error { return e.Err }

// AgentRpcError wraps a classified Windows message-copy send/reply
// failure.
type AgentRpcError struct {
	Msg  string
	Code int
	Err  error
}

func (e *AgentRpcError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent rpc error: %s (code %d): %v", e.Msg, e.Code, e.Err)
	}
	return fmt.Sprintf("agent rpc error: %s (code %d)", e.Msg, e.Code)
}

func (e *AgentRpcError) Unwrap() error { return e.Err }
