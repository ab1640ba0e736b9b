// Package winipc implements the Windows message-copy IPC adapter used to
// reach the native agent's SSH endpoint, which is a window rather than a
// socket. The window handle is not safely concurrent, so access is
// serialized through a single-owner actor goroutine fed by a buffered
// request channel, per the design notes' explicit "serialized actor"
// guidance.
package winipc

import (
	"context"
	"time"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

// SendTimeout is the send timeout for one request/response exchange.
// Long enough to cover interactive PIN entry at the smartcard dialog,
// which routinely takes tens of seconds and would spuriously fail
// against the platform library's ~5s default.
const SendTimeout = 30 * time.Second

// MaxRetries bounds the retry attempts for both ERROR_TIMEOUT and
// ERROR_INVALID_WINDOW_HANDLE.
const MaxRetries = 3

// MaxMessageSize is the size of the named memory mapping each request
// or reply is copied through. A message (the 4-byte length prefix plus
// payload) larger than this cannot be sent; callers must reject it
// before ever reaching the actor.
const MaxMessageSize = 8192

// WindowClient is the platform-specific capability the actor drives: one
// request/response exchange with the agent's SSH window. Implementations
// live in messagecopy_windows.go (real) and messagecopy_other.go (a
// build stub for non-Windows targets, since the outer bridge is the only
// binary that ever exercises this).
type WindowClient interface {
	// SendReceive performs one full request/response cycle: create the
	// mapping, copy in req, send the copy-data message, read back the
	// reply.
	SendReceive(ctx context.Context, req []byte) ([]byte, error)
	// Reopen re-resolves the window handle, used after
	// ERROR_INVALID_WINDOW_HANDLE.
	Reopen() error
	Close() error
}

type request struct {
	payload []byte
	reply   chan response
}

type response struct {
	data []byte
	err  error
}

// Actor owns a WindowClient and serializes all requests through it.
type Actor struct {
	client WindowClient
	log    *logging.Logger
	reqCh  chan request
	done   chan struct{}
}

// NewActor starts the actor's serving goroutine.
func NewActor(client WindowClient, log *logging.Logger) *Actor {
	a := &Actor{
		client: client,
		log:    log,
		reqCh:  make(chan request, 16),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	defer close(a.done)
	for req := range a.reqCh {
		data, err := a.handle(req.payload)
		req.reply <- response{data: data, err: err}
	}
}

// handle applies the retry policy in SPEC_FULL §4.3: ERROR_TIMEOUT is
// retried up to MaxRetries times; ERROR_INVALID_WINDOW_HANDLE reopens
// the window handle and retries up to MaxRetries times. Any other error,
// or exhaustion of retries, is returned to the caller.
func (a *Actor) handle(payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
		data, err := a.client.SendReceive(ctx, payload)
		cancel()
		if err == nil {
			return data, nil
		}
		lastErr = err

		code := errorCode(err)
		switch code {
		case ErrorTimeout:
			a.log.Warnf("winipc: send timed out, attempt %d/%d", attempt+1, MaxRetries+1)
			continue
		case ErrorInvalidWindowHandle:
			a.log.Warnf("winipc: stale window handle, reopening, attempt %d/%d", attempt+1, MaxRetries+1)
			if reopenErr := a.client.Reopen(); reopenErr != nil {
				return nil, &bridgeerr.AgentRpcError{Msg: "reopening window handle", Code: code, Err: reopenErr}
			}
			continue
		default:
			return nil, &bridgeerr.AgentRpcError{Msg: "sending to agent window", Code: code, Err: err}
		}
	}
	return nil, &bridgeerr.AgentRpcError{Msg: "exhausted retries", Code: errorCode(lastErr), Err: lastErr}
}

// Send submits payload to the actor and blocks for the reply.
func (a *Actor) Send(payload []byte) ([]byte, error) {
	reply := make(chan response, 1)
	a.reqCh <- request{payload: payload, reply: reply}
	r := <-reply
	return r.data, r.err
}

// Close stops the actor and its window client.
func (a *Actor) Close() error {
	close(a.reqCh)
	<-a.done
	return a.client.Close()
}
