//go:build !windows

package lifecycle

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sammck/gpg-bridge/bridge/logging"
)

// WatchSignals wires the platform signals to onShutdown, matching
// nupi-ai/nupi's cmd/nupid/main.go signal.Notify + select shape.
//
// On the inner bridge, SIGHUP, SIGINT, and SIGTERM all trigger shutdown.
// On the outer bridge, SIGINT is deliberately ignored (preserved per the
// design notes as an unresolved ambiguity, not extended to SIGTERM) and
// only SIGTERM triggers shutdown.
func WatchSignals(log *logging.Logger, isOuter bool, onShutdown func(sig os.Signal)) {
	sigChan := make(chan os.Signal, 4)
	if isOuter {
		signal.Notify(sigChan, syscall.SIGTERM)
		signal.Ignore(syscall.SIGINT)
	} else {
		signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	}
	go func() {
		for sig := range sigChan {
			log.Infof("received signal %v, shutting down", sig)
			onShutdown(sig)
		}
	}()
}
