package winipc

import "errors"

// Platform error codes classified per SPEC_FULL §4.3.
const (
	ErrorTimeout             = 1460
	ErrorInvalidWindowHandle = 1400
)

// codedError is satisfied by any error that can report a Windows error
// code, letting errorCode work uniformly across the real
// windows.Errno-backed implementation and the fake used in tests.
type codedError interface {
	Code() int
}

func errorCode(err error) int {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return 0
}
