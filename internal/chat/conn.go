// Package chat provides the core chat domain logic shared by all
// transports: rooms, the room and nickname registry, and the participant
// capability that rooms broadcast through.
package chat

// Conn abstracts a bidirectional message connection for both TCP and
// WebSocket. Implementations deliver whole message bodies; framing is a
// transport concern. A blocked ReadBody or WriteBody is canceled by
// closing the connection.
type Conn interface {
	// ReadBody reads the next complete message body.
	ReadBody() ([]byte, error)

	// WriteBody sends one complete message body.
	WriteBody(body []byte) error

	// Close closes the connection and unblocks pending reads and writes.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
