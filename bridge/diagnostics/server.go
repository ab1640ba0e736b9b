// Package diagnostics implements the optional loopback-only HTTP surface
// each bridge process can expose: health/version endpoints and a
// websocket log tail. Never part of the pairing protocol; bound to
// 127.0.0.1:0 only. Adapted from the teacher's share.HTTPServer graceful-
// shutdown wrapper.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jpillora/requestlog"

	"github.com/sammck/gpg-bridge/bridge/logging"
)

// Server is a graceful-shutdown HTTP server bound to an ephemeral
// loopback port, mirroring share.HTTPServer's ListenAndServe/Shutdown/
// Wait shape.
type Server struct {
	log *logging.Logger

	httpServer *http.Server
	listener   net.Listener

	done      chan struct{}
	doneErr   error
	isStarted bool
	stopper   sync.Once

	logTail *LogTail
	version string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer constructs a diagnostics server. version is reported by
// GET /version; tail feeds GET /logs.
func NewServer(log *logging.Logger, version string, tail *LogTail) *Server {
	return &Server{
		log:     log.Fork("diagnostics"),
		done:    make(chan struct{}),
		logTail: tail,
		version: version,
	}
}

// ListenAndServe binds to 127.0.0.1:0 and serves until the context is
// canceled or Shutdown is called. Returns the bound address so the
// caller can log it, matching the design's "ephemeral port logged at
// INFO on startup" requirement.
func (s *Server) ListenAndServe(ctx context.Context) (string, error) {
	if s.isStarted {
		return "", s.log.Errorf("diagnostics server already started")
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	s.listener = l
	s.isStarted = true

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/logs", s.handleLogs)

	var h http.Handler = mux
	h = requestlog.Wrap(h)

	s.httpServer = &http.Server{Handler: h}

	go func() {
		s.shutdownWith(s.httpServer.Serve(l))
	}()
	go func() {
		<-ctx.Done()
		s.shutdownWith(ctx.Err())
	}()

	addr := l.Addr().String()
	s.log.Infof("diagnostics endpoint listening on %s", addr)
	return addr, nil
}

func (s *Server) shutdownWith(err error) {
	s.stopper.Do(func() {
		go func() {
			if s.listener != nil {
				_ = s.listener.Close()
			}
			s.doneErr = err
			close(s.done)
		}()
	})
}

// Shutdown begins asynchronous shutdown.
func (s *Server) Shutdown() {
	s.shutdownWith(nil)
}

// Close shuts down and waits for completion.
func (s *Server) Close() error {
	s.Shutdown()
	return s.Wait()
}

// Wait blocks until the server has fully shut down.
func (s *Server) Wait() error {
	<-s.done
	return s.doneErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, s.version)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logTail == nil {
		http.Error(w, "log tail unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("diagnostics: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	unsubscribe := s.logTail.Subscribe(func(line string) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(line))
	})
	defer unsubscribe()

	// Block until the client goes away; we never read anything
	// meaningful from it.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
