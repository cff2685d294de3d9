// Package ws provides the WebSocket transport for the chat protocol using
// gobwas/ws. Each binary WebSocket message carries exactly one wire frame,
// so bodies decode identically on both transports.
package ws

import (
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"superchat/internal/chat"
	"superchat/pkg/protocol"
)

// Conn adapts an upgraded server-side WebSocket connection to chat.Conn.
type Conn struct {
	conn net.Conn
	rw   io.ReadWriter
}

// NewConn wraps an upgraded connection. rw combines the buffered reader
// used during the handshake with the raw connection for writes, so bytes
// peeked before the upgrade are not lost.
func NewConn(conn net.Conn, rw io.ReadWriter) *Conn {
	return &Conn{conn: conn, rw: rw}
}

// ReadBody implements chat.Conn. Control frames (ping, close) are handled
// by wsutil; only binary payloads surface here.
func (c *Conn) ReadBody() ([]byte, error) {
	payload, err := wsutil.ReadClientBinary(c.rw)
	if err != nil {
		return nil, err
	}
	return protocol.ParseFrame(payload)
}

// WriteBody implements chat.Conn.
func (c *Conn) WriteBody(body []byte) error {
	frame, err := protocol.EncodeFrame(body)
	if err != nil {
		return err
	}
	return wsutil.WriteServerBinary(c.rw, frame)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	_ = wsutil.WriteServerMessage(c.rw, ws.OpClose, nil)
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

var _ chat.Conn = (*Conn)(nil)
