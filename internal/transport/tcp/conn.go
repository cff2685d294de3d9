// Package tcp provides the framed TCP transport for the chat protocol.
package tcp

import (
	"bufio"
	"net"

	"superchat/internal/chat"
	"superchat/pkg/protocol"
)

// Conn adapts a net.Conn to chat.Conn by applying the wire framing: each
// ReadBody consumes exactly one header and body from the stream.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps a freshly accepted or dialed connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: bufio.NewReader(conn)}
}

// NewConnWithReader wraps a connection whose first bytes were already
// peeked for protocol detection; reads continue from the given reader.
func NewConnWithReader(conn net.Conn, reader *bufio.Reader) *Conn {
	return &Conn{conn: conn, reader: reader}
}

// Dial connects to a chat server at addr.
func Dial(addr string) (*Conn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// ReadBody implements chat.Conn.
func (c *Conn) ReadBody() ([]byte, error) {
	return protocol.ReadFrame(c.reader)
}

// WriteBody implements chat.Conn.
func (c *Conn) WriteBody(body []byte) error {
	return protocol.WriteFrame(c.conn, body)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

var _ chat.Conn = (*Conn)(nil)
