// Package lifecycle owns process-wide state: coordinated shutdown, the
// PID-file interlock, daemonization, and signal wiring. Adapted from the
// teacher's share.ShutdownHelper, generalized so both the inner and outer
// bridge coordinators can embed it.
package lifecycle

import (
	"context"
	"sync"
)

// OnceShutdownHandler performs the actual cleanup work exactly once.
type OnceShutdownHandler interface {
	HandleOnceShutdown(completionError error) error
}

// AsyncShutdowner is satisfied by anything that can be asked to shut down
// and later waited on, letting a ShutdownHelper cascade to children.
type AsyncShutdowner interface {
	StartShutdown(completionErr error) error
	ShutdownDoneChan() <-chan struct{}
	IsDoneShutdown() bool
	WaitShutdown() error
}

// ShutdownHelper provides idempotent, coordinated async shutdown with
// child registration, mirroring share.ShutdownHelper in the teacher.
type ShutdownHelper struct {
	Lock sync.Mutex

	shutdownHandler OnceShutdownHandler

	isStartedShutdown bool
	isDoneShutdown    bool

	shutdownStartedChan chan struct{}
	shutdownDoneChan    chan struct{}

	shutdownErr error

	children       []AsyncShutdowner
	childDoneChans []<-chan struct{}

	wg sync.WaitGroup
}

// InitShutdownHelper initializes an existing ShutdownHelper value in
// place, e.g. as an embedded field of a larger struct.
func (h *ShutdownHelper) InitShutdownHelper(handler OnceShutdownHandler) {
	h.shutdownHandler = handler
	h.shutdownStartedChan = make(chan struct{})
	h.shutdownDoneChan = make(chan struct{})
}

// NewShutdownHelper allocates and initializes a standalone ShutdownHelper.
func NewShutdownHelper(handler OnceShutdownHandler) *ShutdownHelper {
	h := &ShutdownHelper{}
	h.InitShutdownHelper(handler)
	return h
}

// ShutdownOnContext starts shutdown when ctx is canceled.
func (h *ShutdownHelper) ShutdownOnContext(ctx context.Context) {
	go func() {
		<-ctx.Done()
		h.StartShutdown(ctx.Err())
	}()
}

func (h *ShutdownHelper) IsStartedShutdown() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.isStartedShutdown
}

func (h *ShutdownHelper) IsDoneShutdown() bool {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.isDoneShutdown
}

func (h *ShutdownHelper) ShutdownStartedChan() <-chan struct{} {
	return h.shutdownStartedChan
}

func (h *ShutdownHelper) ShutdownDoneChan() <-chan struct{} {
	return h.shutdownDoneChan
}

// WaitShutdown blocks until shutdown has completed and returns the
// completion error, if any.
func (h *ShutdownHelper) WaitShutdown() error {
	<-h.shutdownDoneChan
	h.Lock.Lock()
	defer h.Lock.Unlock()
	return h.shutdownErr
}

// AddShutdownChildChan registers a done-channel this helper must wait on
// before it declares itself fully shut down.
func (h *ShutdownHelper) AddShutdownChildChan(done <-chan struct{}) {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	h.childDoneChans = append(h.childDoneChans, done)
}

// AddShutdownChild registers a child that will be cascaded a
// StartShutdown call and waited on.
func (h *ShutdownHelper) AddShutdownChild(child AsyncShutdowner) {
	h.Lock.Lock()
	defer h.Lock.Unlock()
	h.children = append(h.children, child)
	h.childDoneChans = append(h.childDoneChans, child.ShutdownDoneChan())
}

// StartShutdown begins shutdown if it has not already started; safe to
// call multiple times and from multiple goroutines (idempotent).
func (h *ShutdownHelper) StartShutdown(completionErr error) error {
	h.Lock.Lock()
	if h.isStartedShutdown {
		h.Lock.Unlock()
		return nil
	}
	h.isStartedShutdown = true
	h.shutdownErr = completionErr
	children := append([]AsyncShutdowner(nil), h.children...)
	childDoneChans := append([]<-chan struct{}(nil), h.childDoneChans...)
	close(h.shutdownStartedChan)
	h.Lock.Unlock()

	go func() {
		var err error
		if h.shutdownHandler != nil {
			err = h.shutdownHandler.HandleOnceShutdown(completionErr)
		}
		for _, c := range children {
			c.StartShutdown(completionErr)
		}
		for _, dc := range childDoneChans {
			<-dc
		}
		h.wg.Wait()

		h.Lock.Lock()
		if err != nil && h.shutdownErr == nil {
			h.shutdownErr = err
		}
		h.isDoneShutdown = true
		h.Lock.Unlock()
		close(h.shutdownDoneChan)
	}()
	return nil
}

// Shutdown starts shutdown (if not started) and blocks until complete.
func (h *ShutdownHelper) Shutdown(completionError error) error {
	h.StartShutdown(completionError)
	return h.WaitShutdown()
}

// Close is a StartShutdown/WaitShutdown pair returning only the error,
// satisfying io.Closer-shaped call sites.
func (h *ShutdownHelper) Close() error {
	return h.Shutdown(nil)
}

// ShutdownWG exposes the internal WaitGroup so callers can register
// long-running goroutines that must finish before shutdown completes.
func (h *ShutdownHelper) ShutdownWG() *sync.WaitGroup {
	return &h.wg
}
