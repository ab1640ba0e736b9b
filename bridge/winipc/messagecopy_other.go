//go:build !windows

package winipc

import (
	"context"
	"fmt"
)

// MessageCopyClient does not exist on non-Windows targets; the outer
// bridge's SSH class forwarder is only ever built for Windows. This stub
// exists solely so bridge/winipc compiles as part of the shared source
// tree on the inner (Linux) side, which never constructs one.
type MessageCopyClient struct{}

func NewMessageCopyClient() (*MessageCopyClient, error) {
	return nil, fmt.Errorf("winipc: message-copy adapter is only available on Windows")
}

func (c *MessageCopyClient) SendReceive(ctx context.Context, req []byte) ([]byte, error) {
	return nil, fmt.Errorf("winipc: not supported on this platform")
}

func (c *MessageCopyClient) Reopen() error {
	return fmt.Errorf("winipc: not supported on this platform")
}

func (c *MessageCopyClient) Close() error { return nil }
