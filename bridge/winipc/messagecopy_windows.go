//go:build windows

package winipc

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	winio "github.com/Microsoft/go-winio"
)

// windowClassName names the fixed window this system exchanges copy-data
// messages with; copyDataID is the copy-data identifier sent with each one.
const (
	windowClassName = "GPGSshAgentWindow"
	copyDataID      = uintptr(0xAA)
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW        = user32.NewProc("FindWindowW")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")

	wmCopydata uintptr = 0x004A

	smtoAbortIfHung uintptr = 0x0002

	// fileMapAllAccess mirrors the Win32 FILE_MAP_ALL_ACCESS constant,
	// not exported by golang.org/x/sys/windows.
	fileMapAllAccess uintptr = 0x000F001F
)

// windowsError wraps a raw Windows error code so winipc's retry policy
// can classify it via the codedError interface.
type windowsError struct {
	code int
	err  error
}

func (e *windowsError) Error() string { return fmt.Sprintf("windows error %d: %v", e.code, e.err) }
func (e *windowsError) Code() int     { return e.code }

type copyDataStruct struct {
	dwData uintptr
	cbData uint32
	lpData uintptr
}

// MessageCopyClient is the real Windows implementation of WindowClient,
// speaking WM_COPYDATA against the agent's fixed SSH window and
// exchanging payloads through a named, owner-restricted memory mapping.
type MessageCopyClient struct {
	mu     sync.Mutex
	hwnd   uintptr
	sdSDDL string
}

// NewMessageCopyClient resolves the agent's window and prepares the
// owner-only security descriptor used for every mapping this client
// creates.
func NewMessageCopyClient() (*MessageCopyClient, error) {
	sd, err := winio.SddlToSecurityDescriptor("O:BAG:BAD:(A;;GA;;;OW)")
	if err != nil {
		return nil, fmt.Errorf("building owner-only security descriptor: %w", err)
	}
	_ = sd // validated; the raw SDDL string is what CreateFileMapping wants.

	c := &MessageCopyClient{sdSDDL: "O:BAG:BAD:(A;;GA;;;OW)"}
	if err := c.Reopen(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reopen re-resolves the window handle by class name, used both at
// construction and after ERROR_INVALID_WINDOW_HANDLE.
func (c *MessageCopyClient) Reopen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	classPtr, err := syscall.UTF16PtrFromString(windowClassName)
	if err != nil {
		return err
	}
	hwnd, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(classPtr)), 0)
	if hwnd == 0 {
		return &windowsError{code: ErrorInvalidWindowHandle, err: fmt.Errorf("window class %s not found", windowClassName)}
	}
	c.hwnd = hwnd
	return nil
}

// SendReceive creates an owner-restricted mapping, copies req into it,
// sends WM_COPYDATA naming the mapping, and reads back the reply: the
// first 4 bytes of the mapping (big-endian) give the reply length,
// followed by that many payload bytes.
func (c *MessageCopyClient) SendReceive(ctx context.Context, req []byte) ([]byte, error) {
	c.mu.Lock()
	hwnd := c.hwnd
	c.mu.Unlock()
	if hwnd == 0 {
		return nil, &windowsError{code: ErrorInvalidWindowHandle, err: fmt.Errorf("no window handle")}
	}

	sd, err := windows.SecurityDescriptorFromString(c.sdSDDL)
	if err != nil {
		return nil, fmt.Errorf("parsing security descriptor: %w", err)
	}
	sa := &windows.SecurityAttributes{
		Length:             uint32(unsafe.Sizeof(windows.SecurityAttributes{})),
		SecurityDescriptor: sd,
		InheritHandle:      0,
	}

	mapping, err := windows.CreateFileMapping(windows.InvalidHandle, sa, windows.PAGE_READWRITE, 0, uint32(MaxMessageSize), nil)
	if err != nil {
		return nil, fmt.Errorf("CreateFileMapping: %w", err)
	}
	defer windows.CloseHandle(mapping)

	view, err := windows.MapViewOfFile(mapping, fileMapAllAccess, 0, 0, MaxMessageSize)
	if err != nil {
		return nil, fmt.Errorf("MapViewOfFile: %w", err)
	}
	defer windows.UnmapViewOfFile(view)

	buf := unsafe.Slice((*byte)(unsafe.Pointer(view)), MaxMessageSize)
	copy(buf, req)

	cd := copyDataStruct{
		dwData: copyDataID,
		cbData: uint32(len(req)),
		lpData: view,
	}

	deadline, hasDeadline := ctx.Deadline()
	timeoutMs := uintptr(SendTimeout.Milliseconds())
	if hasDeadline {
		if remaining := time.Until(deadline).Milliseconds(); remaining > 0 {
			timeoutMs = uintptr(remaining)
		} else {
			timeoutMs = 0
		}
	}

	result, _, callErr := procSendMessageTimeoutW.Call(
		hwnd, wmCopydata, 0, uintptr(unsafe.Pointer(&cd)),
		smtoAbortIfHung, timeoutMs, 0,
	)
	if result == 0 {
		if callErr == syscall.Errno(ErrorTimeout) {
			return nil, &windowsError{code: ErrorTimeout, err: callErr}
		}
		return nil, &windowsError{code: ErrorInvalidWindowHandle, err: callErr}
	}

	replyLen := binary.BigEndian.Uint32(buf[:4])
	if replyLen > MaxMessageSize-4 {
		return nil, fmt.Errorf("reply length %d exceeds mapping size", replyLen)
	}
	reply := make([]byte, replyLen+4)
	copy(reply, buf[:4+replyLen])
	return reply, nil
}

func (c *MessageCopyClient) Close() error {
	return nil
}
