//go:build windows

package lifecycle

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sammck/gpg-bridge/bridge/logging"
)

// WatchSignals is the Windows counterpart of the Unix implementation.
// The outer bridge always runs on Windows in practice; SIGHUP has no
// Windows equivalent, so the inner-mode branch here only watches
// interrupt/terminate for the (rare) case of running the inner role
// under Windows during development.
func WatchSignals(log *logging.Logger, isOuter bool, onShutdown func(sig os.Signal)) {
	sigChan := make(chan os.Signal, 4)
	if isOuter {
		signal.Notify(sigChan, syscall.SIGTERM)
		signal.Ignore(os.Interrupt)
	} else {
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	}
	go func() {
		for sig := range sigChan {
			log.Infof("received signal %v, shutting down", sig)
			onShutdown(sig)
		}
	}()
}
