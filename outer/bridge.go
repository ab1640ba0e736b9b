// Package outer implements the host-side daemon: it accepts authenticated
// TCP connections from the inner bridge and forwards them to the native
// agent, either by Assuan-style loopback TCP (main/extra/browser
// classes) or Windows message-copy IPC (SSH class).
package outer

import (
	"fmt"
	"net"
	"os/exec"

	"github.com/jpillora/sizestr"

	"github.com/sammck/gpg-bridge/bridge/agentpath"
	"github.com/sammck/gpg-bridge/bridge/assuan"
	"github.com/sammck/gpg-bridge/bridge/bridgeerr"
	"github.com/sammck/gpg-bridge/bridge/config"
	"github.com/sammck/gpg-bridge/bridge/forward"
	"github.com/sammck/gpg-bridge/bridge/lifecycle"
	"github.com/sammck/gpg-bridge/bridge/logging"
	"github.com/sammck/gpg-bridge/bridge/pairing"
	"github.com/sammck/gpg-bridge/bridge/socketclass"
	"github.com/sammck/gpg-bridge/bridge/winipc"
)

// Bridge is the outer-bridge coordinator.
type Bridge struct {
	lifecycle.ShutdownHelper

	cfg   *config.Config
	log   *logging.Logger
	nonce pairing.Nonce

	listeners []*forward.TCPListener
	watchers  map[string]*assuan.Watcher
	sshActor  *winipc.Actor
}

// New constructs an outer Bridge.
func New(cfg *config.Config, log *logging.Logger) *Bridge {
	b := &Bridge{cfg: cfg, log: log.Fork("outer"), watchers: make(map[string]*assuan.Watcher)}
	b.InitShutdownHelper(b)
	return b
}

// Start probes the agent (best-effort), generates and persists the
// pairing nonce, and opens one TCP listener per enabled class.
func (b *Bridge) Start() error {
	probeAgent(b.log)

	nonce, err := pairing.Generate()
	if err != nil {
		return err
	}
	if err := nonce.WriteFile(b.cfg.NoncefilePath); err != nil {
		return err
	}
	b.nonce = nonce
	b.log.Infof("wrote pairing nonce to %s", b.cfg.NoncefilePath)

	if b.cfg.EnableSsh {
		client, err := winipc.NewMessageCopyClient()
		if err != nil {
			return fmt.Errorf("initializing SSH message-copy adapter: %w", err)
		}
		b.sshActor = winipc.NewActor(client, b.log)
	}

	homeDir, err := agentpath.HomeDir()
	if err != nil {
		return err
	}

	for _, class := range socketclass.Enabled(b.cfg.EnableSsh) {
		addr := fmt.Sprintf("%s:%d", b.cfg.WindowsAddress, class.Port(b.cfg.BasePort))
		l, err := forward.NewTCPListener(addr)
		if err != nil {
			return err
		}
		b.listeners = append(b.listeners, l)
		if class.ForwardMode == socketclass.Assuan {
			b.watchers[class.Name] = assuan.NewWatcher(agentpath.DescriptorPath(homeDir, class), b.log)
		}
		b.log.Infof("listening for %s on %s", class, addr)
		go b.acceptLoop(class, l)
	}
	return nil
}

// probeAgent sends a best-effort liveness ping to the native agent;
// failure is logged, never fatal, matching the "probe ... failure is
// non-fatal" requirement.
func probeAgent(log *logging.Logger) {
	if err := exec.Command("gpgconf", "--list-dirs").Run(); err != nil {
		log.Debugf("agent probe failed (ignored): %v", err)
	}
}

func (b *Bridge) acceptLoop(class socketclass.Class, l *forward.TCPListener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if b.IsStartedShutdown() {
				return
			}
			b.log.Warnf("%s: accept failed: %v", class, err)
			continue
		}
		go b.serveClient(class, conn)
	}
}

// serveClient authenticates the connection's first 16 bytes against the
// pairing nonce, per SPEC_FULL §4.2, before doing anything else — no
// payload byte is ever forwarded to the agent for a connection that
// fails this check.
func (b *Bridge) serveClient(class socketclass.Class, client *forward.SocketConn) {
	log := b.log.Fork(fmt.Sprintf("%s#%d", class, client.ID))
	defer client.Close()

	var got pairing.Nonce
	if err := forward.ReadExact(client, got[:]); err != nil {
		log.Errorf("auth failed: reading nonce: %v", err)
		return
	}
	if !got.Equal(b.nonce) {
		log.Errorf("auth failed: nonce mismatch")
		return
	}

	switch class.ForwardMode {
	case socketclass.Assuan:
		b.forwardAssuan(log, class, client)
	case socketclass.WindowsMessageCopy:
		b.forwardSsh(log, client)
	}
}

// forwardAssuan reads the class's Assuan descriptor (deliberately only
// reachable after nonce authentication above, per SPEC_FULL §9(iii)),
// dials the agent's loopback port, presents the Assuan nonce, and
// splices the remaining bytes.
func (b *Bridge) forwardAssuan(log *logging.Logger, class socketclass.Class, client *forward.SocketConn) {
	watcher := b.watchers[class.Name]
	desc, err := watcher.Read()
	if err != nil {
		log.Warnf("descriptor error: %v", err)
		return
	}

	agentAddr := fmt.Sprintf("127.0.0.1:%d", desc.Port)
	agentConn, err := net.Dial("tcp", agentAddr)
	if err != nil {
		// The descriptor may be stale if the agent rotated its port;
		// invalidate and let the next connection re-read.
		watcher.Invalidate()
		log.Warnf("connecting to agent at %s: %v", agentAddr, err)
		return
	}
	defer agentConn.Close()

	if _, err := agentConn.Write(desc.Nonce[:]); err != nil {
		log.Warnf("writing assuan nonce: %v", err)
		return
	}

	sent, received := forward.Splice(client, agentConn)
	log.Infof("closed: sent=%s received=%s", sizestr.ToString(sent), sizestr.ToString(received))
}

// forwardSsh reads length-prefixed ssh-agent protocol messages from the
// client and relays each one through the serialized winipc actor,
// writing back whatever the agent's window returns.
func (b *Bridge) forwardSsh(log *logging.Logger, client *forward.SocketConn) {
	if b.sshActor == nil {
		log.Warnf("SSH class enabled but actor not initialized")
		return
	}
	for {
		var lenBuf [4]byte
		if err := forward.ReadExact(client, lenBuf[:]); err != nil {
			return
		}
		msgLen := int(lenBuf[0])<<24 | int(lenBuf[1])<<16 | int(lenBuf[2])<<8 | int(lenBuf[3])
		if msgLen < 0 || msgLen > winipc.MaxMessageSize-4 {
			log.Warnf("ssh message length %d exceeds the message-copy mapping size", msgLen)
			return
		}
		payload := make([]byte, 4+msgLen)
		copy(payload, lenBuf[:])
		if err := forward.ReadExact(client, payload[4:]); err != nil {
			return
		}

		reply, err := b.sshActor.Send(payload)
		if err != nil {
			log.Errorf("ssh agent rpc failed: %v", err)
			return
		}
		if _, err := client.Write(reply); err != nil {
			return
		}
	}
}

// HandleOnceShutdown implements lifecycle.OnceShutdownHandler: closes
// listeners, watchers, the SSH actor, and removes the nonce file.
func (b *Bridge) HandleOnceShutdown(completionError error) error {
	for _, l := range b.listeners {
		_ = l.Close()
	}
	for _, w := range b.watchers {
		_ = w.Close()
	}
	if b.sshActor != nil {
		_ = b.sshActor.Close()
	}
	if err := pairing.RemoveFile(b.cfg.NoncefilePath); err != nil {
		return &bridgeerr.IoError{Msg: "removing noncefile", Err: err}
	}
	b.log.Infof("exiting")
	return nil
}
