// Package server implements the chat server: a single listening port
// accepting both raw TCP and WebSocket clients, a registry of ten room
// slots, and one session per connection.
package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/gobwas/ws"

	"superchat/internal/chat"
	"superchat/internal/store"
	"superchat/internal/transport/tcp"
	wstransport "superchat/internal/transport/ws"
)

// Server accepts connections and runs a Session for each.
type Server struct {
	address  string
	listener net.Listener
	registry *chat.Registry
	replies  store.ReplyLog
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}

	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a server. The reply log records how often each reply text
// is seen across all rooms.
func New(address string, replies store.ReplyLog, logger *slog.Logger) *Server {
	return &Server{
		address:  address,
		registry: chat.NewRegistry(),
		replies:  replies,
		logger:   logger,
		sessions: make(map[*Session]struct{}),
		quit:     make(chan struct{}),
	}
}

// Start listens and serves until Stop is called. It blocks.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.logger.Info("server started", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				s.logger.Error("accept failed", "error", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Stop closes the listener and every live session, then waits for the
// handlers to drain.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("server stopped")
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Registry exposes the room registry, mainly for tests.
func (s *Server) Registry() *chat.Registry {
	return s.registry
}

// handleConn detects the transport, builds the chat.Conn and runs the
// session to completion.
func (s *Server) handleConn(conn net.Conn) {
	chatConn, err := detectTransport(conn)
	if err != nil {
		s.logger.Debug("transport detection failed", "addr", conn.RemoteAddr(), "error", err)
		conn.Close()
		return
	}

	sess := newSession(chatConn, s.registry, s.replies, s.logger)

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	sess.run(context.Background())

	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// detectTransport peeks at the first bytes of a fresh connection. HTTP
// method prefixes mean a WebSocket upgrade; anything else is treated as
// the raw framed protocol. The buffered reader keeps the peeked bytes
// available to whichever transport wins.
func detectTransport(conn net.Conn) (chat.Conn, error) {
	reader := bufio.NewReader(conn)
	peek, err := reader.Peek(4)
	if err != nil {
		return nil, err
	}

	if !isHTTP(peek) {
		return tcp.NewConnWithReader(conn, reader), nil
	}

	rw := readWriter{Reader: reader, Writer: conn}
	if _, err := ws.Upgrade(rw); err != nil {
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}
	return wstransport.NewConn(conn, rw), nil
}

func isHTTP(peek []byte) bool {
	for _, method := range [][]byte{
		[]byte("GET "), []byte("POST"), []byte("PUT "), []byte("HEAD"),
		[]byte("OPTI"), []byte("PATC"), []byte("DELE"), []byte("CONN"),
	} {
		if bytes.HasPrefix(peek, method) {
			return true
		}
	}
	return false
}

// readWriter pairs the peeked buffered reader with the raw connection for
// writes.
type readWriter struct {
	io.Reader
	io.Writer
}
