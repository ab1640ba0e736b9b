package lifecycle

import (
	"errors"
	"testing"
	"time"
)

type recordingHandler struct {
	called       int
	completedErr error
}

func (h *recordingHandler) HandleOnceShutdown(completionError error) error {
	h.called++
	h.completedErr = completionError
	return nil
}

func TestShutdownHelperIsIdempotent(t *testing.T) {
	h := &recordingHandler{}
	helper := NewShutdownHelper(h)

	wantErr := errors.New("boom")
	helper.StartShutdown(wantErr)
	helper.StartShutdown(errors.New("second call should be ignored"))

	select {
	case <-helper.ShutdownDoneChan():
	case <-time.After(2 * time.Second):
		t.Fatalf("shutdown did not complete")
	}

	if h.called != 1 {
		t.Fatalf("handler called %d times, want 1", h.called)
	}
	if !errors.Is(h.completedErr, wantErr) {
		t.Fatalf("handler saw completion error %v, want %v", h.completedErr, wantErr)
	}
	if !helper.IsDoneShutdown() {
		t.Fatalf("IsDoneShutdown() = false after shutdown completed")
	}
}

func TestShutdownHelperCascadesToChildren(t *testing.T) {
	parent := NewShutdownHelper(&recordingHandler{})
	childHandler := &recordingHandler{}
	child := NewShutdownHelper(childHandler)
	parent.AddShutdownChild(child)

	parent.StartShutdown(nil)

	select {
	case <-parent.ShutdownDoneChan():
	case <-time.After(2 * time.Second):
		t.Fatalf("parent shutdown did not complete")
	}

	if childHandler.called != 1 {
		t.Fatalf("child handler called %d times, want 1", childHandler.called)
	}
}
