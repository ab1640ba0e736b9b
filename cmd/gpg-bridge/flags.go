package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/config"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

// commonFlags is the configuration table from SPEC_FULL §6, applied
// identically to both subcommands so a single Config struct can be
// populated regardless of mode; fields unused by the running mode are
// simply ignored (e.g. windows_address on inner).
type commonFlags struct {
	remoteAddress      string
	windowsAddress     string
	basePort           int
	enableSsh          bool
	noncefilePath      string
	logfilePath        string
	pidfilePath        string
	daemonize          bool
	logLevel           string
	windowsLogfilePath string
	windowsPidfilePath string
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVar(&f.remoteAddress, "remote-address", config.DefaultRemoteAddress, "address the inner bridge uses to reach the outer bridge")
	cmd.Flags().StringVar(&f.windowsAddress, "windows-address", config.DefaultWindowsAddress, "bind address for the outer bridge's listeners")
	cmd.Flags().IntVar(&f.basePort, "base-port", config.DefaultBasePort, "first of the 3 or 4 forwarding ports")
	cmd.Flags().BoolVar(&f.enableSsh, "enable-ssh", false, "forward the SSH agent class")
	cmd.Flags().StringVar(&f.noncefilePath, "noncefile-path", "", "shared pairing-nonce file path (default: <agent home dir>/gpg-bridge.nonce)")
	cmd.Flags().StringVar(&f.logfilePath, "logfile-path", "", "append target for logging and redirected std streams")
	cmd.Flags().StringVar(&f.pidfilePath, "pidfile-path", "", "PID-file interlock path")
	cmd.Flags().BoolVar(&f.daemonize, "daemonize", false, "detach and redirect std streams (requires pidfile-path)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "INFO", "one of DEBUG, INFO, WARN, ERROR, FATAL, UNKNOWN")
	cmd.Flags().StringVar(&f.windowsLogfilePath, "windows-logfile-path", "", "logfile-path forwarded to the outer bridge")
	cmd.Flags().StringVar(&f.windowsPidfilePath, "windows-pidfile-path", "", "pidfile-path forwarded to the outer bridge")
}

// toConfig builds a config.Config from parsed flags, validating the
// log-level enum eagerly per SPEC_FULL §6.1 (unrecognized values are a
// ConfigError at flag-parsing time, not a silent default).
func (f *commonFlags) toConfig(mode config.Mode) (*config.Config, error) {
	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return nil, &bridgeerr.ConfigError{Msg: "parsing log_level", Err: err}
	}
	cfg := &config.Config{
		Mode:               mode,
		RemoteAddress:      f.remoteAddress,
		WindowsAddress:     f.windowsAddress,
		BasePort:           f.basePort,
		EnableSsh:          f.enableSsh,
		NoncefilePath:      f.noncefilePath,
		LogfilePath:        f.logfilePath,
		PidfilePath:        f.pidfilePath,
		Daemonize:          f.daemonize,
		LogLevel:           level,
		WindowsLogfilePath: f.windowsLogfilePath,
		WindowsPidfilePath: f.windowsPidfilePath,
		DiagnosticsEnabled: level <= logging.DEBUG,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// argsForOuter reconstructs the command-line arguments the outer bridge
// should be launched with, forwarding the fields SPEC_FULL §4.4 says are
// passed on the command line.
func (f *commonFlags) argsForOuter() []string {
	args := []string{"outer",
		"--windows-address", f.windowsAddress,
		"--base-port", strconv.Itoa(f.basePort),
		"--noncefile-path", f.noncefilePath,
		"--log-level", f.logLevel,
	}
	if f.enableSsh {
		args = append(args, "--enable-ssh")
	}
	if f.windowsLogfilePath != "" {
		args = append(args, "--logfile-path", f.windowsLogfilePath)
	}
	if f.windowsPidfilePath != "" {
		args = append(args, "--pidfile-path", f.windowsPidfilePath)
	}
	return args
}
