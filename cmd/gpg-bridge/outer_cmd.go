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
	"github.com/sammck/gpg-bridge/bridge/lifecycle"
	"github.com/sammck/gpg-bridge/bridge/logging"
	"github.com/sammck/gpg-bridge/outer"
)

func newOuterCmd() *cobra.Command {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "outer",
		Short: "Run the host-side bridge daemon (spawned by the inner bridge)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOuter(f)
		},
	}
	addCommonFlags(cmd, f)
	return cmd
}

func runOuter(f *commonFlags) error {
	// Standalone invocations (not spawned by the inner bridge, which
	// always resolves and forwards an explicit path) still get a real
	// default rather than tripping Validate's non-empty requirement.
	if f.noncefilePath == "" {
		homeDir, err := agentpath.HomeDir()
		if err != nil {
			return err
		}
		f.noncefilePath = agentpath.DefaultNoncefilePath(homeDir)
	}

	cfg, err := f.toConfig(config.Outer)
	if err != nil {
		return err
	}

	if running, pid, err := lifecycle.IsRunning(cfg.PidfilePath); err != nil {
		return err
	} else if running {
		fmt.Fprintf(os.Stderr, "outer bridge already running as pid %d\n", pid)
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

	b := outer.New(cfg, log)
	if err := b.Start(); err != nil {
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

	lifecycle.WatchSignals(log, true, func(sig os.Signal) {
		b.StartShutdown(nil)
	})

	return b.WaitShutdown()
}
