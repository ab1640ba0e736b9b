package config

import (
	"errors"
	"testing"

	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/logging"
)

func TestValidateDaemonizeRequiresPidfile(t *testing.T) {
	cfg := &Config{Mode: Inner, BasePort: DefaultBasePort, Daemonize: true}
	err := cfg.Validate()
	var ce *bridgeerr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *bridgeerr.ConfigError, got %T: %v", err, err)
	}
}

func TestValidateOuterRequiresNoncefile(t *testing.T) {
	cfg := &Config{Mode: Outer, BasePort: DefaultBasePort}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when outer mode has no noncefile_path")
	}
}

func TestValidateAcceptsWellFormedInnerConfig(t *testing.T) {
	cfg := &Config{
		Mode:          Inner,
		BasePort:      DefaultBasePort,
		RemoteAddress: DefaultRemoteAddress,
		NoncefilePath: "/tmp/nonce",
		LogLevel:      logging.INFO,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadBasePort(t *testing.T) {
	cfg := &Config{Mode: Inner, BasePort: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for base_port 0")
	}
}
