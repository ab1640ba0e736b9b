package winipc

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger("test", logging.DEBUG, io.Discard)
}

func TestActorSendReceive(t *testing.T) {
	fake := &FakeWindowClient{
		Responder: func(req []byte) ([]byte, error) {
			return append([]byte("reply:"), req...), nil
		},
	}
	a := NewActor(fake, newTestLogger())
	defer a.Close()

	reply, err := a.Send([]byte("ping"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !bytes.Equal(reply, []byte("reply:ping")) {
		t.Fatalf("got %q", reply)
	}
}

func TestActorRetriesOnTimeout(t *testing.T) {
	attempts := 0
	fake := &FakeWindowClient{
		Responder: func(req []byte) ([]byte, error) {
			attempts++
			if attempts <= 2 {
				return nil, &FakeCodedError{Msg: "timed out", CodeVal: ErrorTimeout}
			}
			return []byte("ok"), nil
		},
	}
	a := NewActor(fake, newTestLogger())
	defer a.Close()

	reply, err := a.Send([]byte("x"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(reply) != "ok" {
		t.Fatalf("got %q", reply)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestActorReopensOnStaleHandle(t *testing.T) {
	calls := 0
	fake := &FakeWindowClient{
		Responder: func(req []byte) ([]byte, error) {
			calls++
			if calls == 1 {
				return nil, &FakeCodedError{Msg: "stale", CodeVal: ErrorInvalidWindowHandle}
			}
			return []byte("recovered"), nil
		},
	}
	a := NewActor(fake, newTestLogger())
	defer a.Close()

	reply, err := a.Send([]byte("x"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(reply) != "recovered" {
		t.Fatalf("got %q", reply)
	}
	if fake.ReopenCalls != 1 {
		t.Fatalf("ReopenCalls = %d, want 1", fake.ReopenCalls)
	}
}

func TestActorExhaustsRetries(t *testing.T) {
	fake := &FakeWindowClient{
		Responder: func(req []byte) ([]byte, error) {
			return nil, &FakeCodedError{Msg: "always times out", CodeVal: ErrorTimeout}
		},
	}
	a := NewActor(fake, newTestLogger())
	defer a.Close()

	_, err := a.Send([]byte("x"))
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	var rpcErr *bridgeerr.AgentRpcError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *bridgeerr.AgentRpcError, got %T: %v", err, err)
	}
}
