// Package inner implements the subsystem-side daemon: it exposes the
// client-facing filesystem sockets and multiplexes each client onto an
// authenticated TCP connection to the outer bridge.
package inner

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/jpillora/sizestr"

	"github.com/sammck/gpg-bridge/bridge/agentpath"
	"github.com/sammck/gpg-bridge/bridge/config"
	"github.com/sammck/gpg-bridge/bridge/forward"
	"github.com/sammck/gpg-bridge/bridge/launch"
	"github.com/sammck/gpg-bridge/bridge/lifecycle"
	"github.com/sammck/gpg-bridge/bridge/logging"
	"github.com/sammck/gpg-bridge/bridge/pairing"
	"github.com/sammck/gpg-bridge/bridge/socketclass"
)

// Bridge is the inner-bridge coordinator. It embeds lifecycle.
// ShutdownHelper for idempotent, cascading shutdown of its listeners.
type Bridge struct {
	lifecycle.ShutdownHelper

	cfg      *config.Config
	log      *logging.Logger
	launcher launch.HostLauncher

	listeners     []*forward.UnixListener
	child         launch.ChildHandle
	noncefilePath string
}

// New constructs an inner Bridge. launcher is injected so tests can pass
// a launch.FakeLauncher.
func New(cfg *config.Config, log *logging.Logger, launcher launch.HostLauncher) *Bridge {
	b := &Bridge{cfg: cfg, log: log.Fork("inner"), launcher: launcher}
	b.InitShutdownHelper(b)
	return b
}

// Start spawns the outer bridge, translates the outer's host-style
// nonce file path to its subsystem-visible form, best-effort stops any
// local agent, then opens one filesystem-socket listener per enabled
// class and starts serving clients. It returns once all listeners are
// up; serving continues on background goroutines until shutdown.
func (b *Bridge) Start(ctx context.Context, ownSubsystemPath string, outerArgs []string) error {
	child, err := b.launcher.Launch(ownSubsystemPath, outerArgs)
	if err != nil {
		return err
	}
	b.child = child
	b.log.Infof("spawned outer bridge, pid %d", child.Pid())

	subsystemNoncePath, err := b.launcher.HostPathToSubsystemPath(b.cfg.NoncefilePath)
	if err != nil {
		return err
	}
	b.noncefilePath = subsystemNoncePath

	stopLocalAgent(b.log)

	homeDir, err := agentpath.HomeDir()
	if err != nil {
		return err
	}

	for _, class := range socketclass.Enabled(b.cfg.EnableSsh) {
		path := agentpath.SocketPath(homeDir, class)
		l, err := forward.NewUnixListener(path)
		if err != nil {
			return err
		}
		b.listeners = append(b.listeners, l)
		b.log.Infof("listening for %s on %s", class, path)
		go b.acceptLoop(ctx, class, l)
	}
	return nil
}

// stopLocalAgent sends a best-effort, coarse terminate signal to any
// running local agent process before serving clients, so it doesn't
// contend for the sockets this bridge is about to bind. Preserved
// verbatim as an unresolved design ambiguity (SPEC_FULL §9(ii)): whether
// this is intentional or a historical workaround is unclear, so it is
// kept as-is rather than resolved one way or the other. Failure here is
// logged, never fatal.
func stopLocalAgent(log *logging.Logger) {
	if err := exec.Command("pkill", "-f", "gpg-agent").Run(); err != nil {
		log.Debugf("stop-local-agent: pkill gpg-agent: %v (ignored)", err)
	}
}

func (b *Bridge) acceptLoop(ctx context.Context, class socketclass.Class, l *forward.UnixListener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if b.IsStartedShutdown() {
				return
			}
			b.log.Warnf("%s: accept failed: %v", class, err)
			continue
		}
		go b.serveClient(ctx, class, conn)
	}
}

// serveClient reads the pairing nonce, dials the outer bridge, writes
// the nonce as the connection's first 16 bytes, and splices the rest.
func (b *Bridge) serveClient(ctx context.Context, class socketclass.Class, client *forward.SocketConn) {
	log := b.log.Fork(fmt.Sprintf("%s#%d", class, client.ID))
	defer client.Close()

	nonce, err := pairing.ReadFile(b.noncefilePath)
	if err != nil {
		log.Warnf("abandoning connection: %v", err)
		return
	}

	traceID := uuid.New().String()
	outerConn, err := b.dialOuter(ctx, class)
	if err != nil {
		log.Warnf("abandoning connection: could not reach outer bridge: %v", err)
		return
	}
	defer outerConn.Close()

	if _, err := outerConn.Write(nonce[:]); err != nil {
		log.Warnf("abandoning connection: writing nonce: %v", err)
		return
	}
	log.Debugf("paired, trace=%s", traceID)

	sent, received := forward.Splice(client, outerConn)
	log.Infof("closed: sent=%s received=%s", sizestr.ToString(sent), sizestr.ToString(received))
}

// dialOuter connects to the outer bridge for class, retrying briefly
// with backoff to absorb the startup race where the outer bridge has
// just been spawned and may not be listening yet. Grounded on the
// teacher's client.connectionLoop use of jpillora/backoff; this is not a
// steady-state reconnect loop, only a startup grace period.
func (b *Bridge) dialOuter(ctx context.Context, class socketclass.Class) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", b.cfg.RemoteAddress, class.Port(b.cfg.BasePort))
	bo := &backoff.Backoff{Min: 50 * time.Millisecond, Max: 2 * time.Second, Factor: 2}
	dialer := &net.Dialer{Timeout: 5 * time.Second}

	var lastErr error
	for attempt := 0; attempt < 6; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(bo.Duration()):
		}
	}
	return nil, fmt.Errorf("dialing outer bridge at %s: %w", addr, lastErr)
}

// HandleOnceShutdown implements lifecycle.OnceShutdownHandler: closes all
// listeners. Idempotent by construction (ShutdownHelper guarantees this
// runs exactly once).
func (b *Bridge) HandleOnceShutdown(completionError error) error {
	for _, l := range b.listeners {
		_ = l.Close()
	}
	b.log.Infof("exiting")
	return nil
}
