package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sammck/gpg-bridge/bridge/agentpath"
	"github.com/sammck/gpg-bridge/bridge/config"
	"github.com/sammck/gpg-bridge/bridge/diagnostics"
	"github.com/sammck/gpg-bridge/bridge/launch"
	"github.com/sammck/gpg-bridge/bridge/lifecycle"
	"github.com/sammck/gpg-bridge/bridge/logging"
	"github.com/sammck/gpg-bridge/inner"
)

func newInnerCmd() *cobra.Command {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "inner",
		Short: "Run the subsystem-side bridge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInner(f)
		},
	}
	addCommonFlags(cmd, f)
	return cmd
}

func runInner(f *commonFlags) error {
	launcher := &launch.WSLLauncher{Log: logging.NewLogger("gpg-bridge", logging.INFO, os.Stderr)}

	// The default nonce path is resolved here, before Validate and before
	// the outer is spawned, so both processes agree on a real shared
	// path instead of the outer rejecting an empty one at startup.
	if f.noncefilePath == "" {
		subsystemHomeDir, err := agentpath.HomeDir()
		if err != nil {
			return err
		}
		hostDefault, err := launcher.SubsystemPathToHostPath(agentpath.DefaultNoncefilePath(subsystemHomeDir))
		if err != nil {
			return err
		}
		f.noncefilePath = hostDefault
	}

	cfg, err := f.toConfig(config.Inner)
	if err != nil {
		return err
	}

	if running, pid, err := lifecycle.IsRunning(cfg.PidfilePath); err != nil {
		return err
	} else if running {
		fmt.Fprintf(os.Stderr, "inner bridge already running as pid %d\n", pid)
		return nil
	}

	if cfg.Daemonize {
		if err := lifecycle.Daemonize(cfg.LogfilePath); err != nil {
			return err
		}
	}

	var out io.Writer = os.Stderr
	var tail *diagnostics.LogTail
	if cfg.DiagnosticsEnabled {
		tail = diagnostics.NewLogTail(500)
		out = io.MultiWriter(out, tail)
	}
	if cfg.LogfilePath != "" && !cfg.Daemonize {
		f, err := os.OpenFile(cfg.LogfilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err == nil {
			out = io.MultiWriter(out, f)
		}
	}
	log := logging.NewLogger("gpg-bridge", cfg.LogLevel, out)

	if cfg.PidfilePath != "" {
		if err := lifecycle.WritePIDFile(cfg.PidfilePath); err != nil {
			return err
		}
		defer lifecycle.RemovePIDFile(cfg.PidfilePath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	launcher.Log = log
	b := inner.New(cfg, log, launcher)

	exePath, err := os.Executable()
	if err != nil {
		return err
	}
	if err := b.Start(ctx, exePath, f.argsForOuter()); err != nil {
		return err
	}

	if cfg.DiagnosticsEnabled {
		diag := diagnostics.NewServer(log, version, tail)
		if _, err := diag.ListenAndServe(ctx); err != nil {
			log.Warnf("diagnostics server failed to start: %v", err)
		} else {
			defer diag.Close()
		}
	}

	lifecycle.WatchSignals(log, false, func(sig os.Signal) {
		b.StartShutdown(nil)
	})

	return b.WaitShutdown()
}
