package winipc

import (
	"context"
	"sync"
)

// FakeWindowClient is a test double for WindowClient, usable on any
// platform to exercise Actor's retry policy without a real window.
type FakeWindowClient struct {
	mu sync.Mutex

	// Responder computes a reply for a request, or returns an error to
	// simulate a platform failure classified by its Code().
	Responder func(req []byte) ([]byte, error)

	ReopenCalls int
	ReopenErr   error
	ClosedCalls int
}

func (f *FakeWindowClient) SendReceive(ctx context.Context, req []byte) ([]byte, error) {
	if f.Responder == nil {
		return req, nil
	}
	return f.Responder(req)
}

func (f *FakeWindowClient) Reopen() error {
	f.mu.Lock()
	f.ReopenCalls++
	f.mu.Unlock()
	return f.ReopenErr
}

func (f *FakeWindowClient) Close() error {
	f.mu.Lock()
	f.ClosedCalls++
	f.mu.Unlock()
	return nil
}

// FakeCodedError lets tests simulate a classified platform failure.
type FakeCodedError struct {
	Msg      string
	CodeVal  int
}

func (e *FakeCodedError) Error() string { return e.Msg }
func (e *FakeCodedError) Code() int     { return e.CodeVal }
