package client

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"superchat/internal/chat"
	"superchat/internal/store"
	"superchat/internal/transport/tcp"
	"superchat/pkg/protocol"
)

// replyTimeout bounds how long a control request waits for its reply. The
// server answers from memory, so anything slower means the connection is
// gone.
const replyTimeout = 10 * time.Second

// ErrClosed is returned by operations on a client whose connection has
// shut down.
var ErrClosed = fmt.Errorf("client: connection closed")

// Client is a connected chat client. Outbound bodies are funneled
// through a single writer goroutine so concurrent callers cannot
// interleave frames; inbound bodies are routed by the Dispatcher.
type Client struct {
	conn       chat.Conn
	dispatcher *Dispatcher
	bans       store.BanStore
	logger     *slog.Logger

	outgoing chan []byte
	done     chan struct{}

	mu       sync.Mutex
	nickname string

	closeOnce sync.Once
	doneOnce  sync.Once
}

// Dial connects to a server. display receives filtered chat lines as
// they arrive; bans backs the /ban commands and the display filter and
// may be nil.
func Dial(address string, display func(string), bans store.BanStore, logger *slog.Logger) (*Client, error) {
	conn, err := tcp.Dial(address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	c := &Client{
		conn:       conn,
		dispatcher: NewDispatcher(display, bans, logger),
		bans:       bans,
		logger:     logger,
		outgoing:   make(chan []byte, 64),
		done:       make(chan struct{}),
	}

	go c.run()
	return c, nil
}

// run drives the read and write loops until either fails.
func (c *Client) run() {
	var group errgroup.Group
	group.Go(c.readLoop)
	group.Go(c.writeLoop)

	if err := group.Wait(); err != nil {
		c.logger.Debug("connection closed", "error", err)
	}
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Client) readLoop() error {
	for {
		body, err := c.conn.ReadBody()
		if err != nil {
			c.Close()
			return err
		}
		c.dispatcher.Dispatch(body)
	}
}

func (c *Client) writeLoop() error {
	for {
		select {
		case <-c.done:
			return nil
		case body := <-c.outgoing:
			if err := c.conn.WriteBody(body); err != nil {
				c.Close()
				return err
			}
		}
	}
}

// Close shuts the connection down. Safe to call any number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
	c.doneOnce.Do(func() { close(c.done) })
}

// Done is closed once the connection has shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Nickname returns the registered nickname, empty before registration.
func (c *Client) Nickname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nickname
}

func (c *Client) enqueue(body []byte) error {
	select {
	case c.outgoing <- body:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Register claims a nickname and reports whether the server accepted it.
// A rejected name leaves the session unregistered; call again with a
// different name.
func (c *Client) Register(name string) (bool, error) {
	if err := c.enqueue(protocol.NameRequest(name)); err != nil {
		return false, err
	}
	accepted, err := awaitReply(c, c.dispatcher.nameResults)
	if err != nil || !accepted {
		return false, err
	}

	c.mu.Lock()
	c.nickname = name
	c.mu.Unlock()
	c.dispatcher.SetOwner(name)
	return true, nil
}

// SwitchRoom moves to room index. The room's recent messages arrive
// through the display callback before this returns.
func (c *Client) SwitchRoom(index int) (SwitchResult, error) {
	if err := c.enqueue(protocol.SwitchRequest(index)); err != nil {
		return SwitchResult{}, err
	}
	return awaitReply(c, c.dispatcher.switchResults)
}

// NameRoom names the current room. The server sends no reply.
func (c *Client) NameRoom(name string) error {
	return c.enqueue(protocol.RenameRequest(name))
}

// DeleteRoom asks the server to delete room index and reports whether it
// agreed.
func (c *Client) DeleteRoom(index int) (bool, error) {
	if err := c.enqueue(protocol.DeleteRequest(index)); err != nil {
		return false, err
	}
	return awaitReply(c, c.dispatcher.deleteResults)
}

// ListRooms fetches the active-room listing.
func (c *Client) ListRooms() (string, error) {
	if err := c.enqueue([]byte(protocol.ListRequest)); err != nil {
		return "", err
	}
	return awaitReply(c, c.dispatcher.listings)
}

// Send broadcasts text to the current room as a timestamped chat line.
// The server echoes it back, so the sender's own line arrives through
// the display callback like everyone else's.
func (c *Client) Send(text string) error {
	line := protocol.FormatChatLine(c.Nickname(), text, time.Now())
	return c.enqueue([]byte(line))
}

// Ban adds nick to this client's ban list and reports whether it was
// newly added. Banned senders' lines are dropped before display.
func (c *Client) Ban(nick string) (bool, error) {
	if c.bans == nil {
		return false, fmt.Errorf("client: no ban store configured")
	}
	return c.bans.Ban(c.Nickname(), nick)
}

// Unban removes nick from this client's ban list and reports whether it
// was present.
func (c *Client) Unban(nick string) (bool, error) {
	if c.bans == nil {
		return false, fmt.Errorf("client: no ban store configured")
	}
	return c.bans.Unban(c.Nickname(), nick)
}

// Banned lists this client's banned nicknames.
func (c *Client) Banned() ([]string, error) {
	if c.bans == nil {
		return nil, nil
	}
	return c.bans.Banned(c.Nickname())
}

// awaitReply waits for the pending control reply of type T.
func awaitReply[T any](c *Client, ch <-chan T) (T, error) {
	var zero T
	select {
	case result := <-ch:
		return result, nil
	case <-c.done:
		return zero, ErrClosed
	case <-time.After(replyTimeout):
		return zero, fmt.Errorf("client: timed out waiting for server reply")
	}
}
