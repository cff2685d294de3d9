package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"superchat/internal/chat"
	"superchat/internal/store"
	"superchat/pkg/protocol"
)

// outgoingBuffer sizes the per-session write queue. It must hold at least
// a full replay burst (MaxRecentMessages) plus the control reply that
// follows a room switch.
const outgoingBuffer = 2 * chat.MaxRecentMessages

// Session is the per-connection state machine. It reads one body at a
// time, dispatches on the control tag, and owns the ordered write queue:
// deliveries land on a buffered channel drained by a single writer
// goroutine, so exactly one write is in flight per connection and
// enqueue order is never violated. Interleaved partial writes would
// corrupt the framing, which is why nothing writes to the connection
// except that goroutine.
type Session struct {
	id       string
	conn     chat.Conn
	registry *chat.Registry
	replies  store.ReplyLog
	logger   *slog.Logger

	outgoing chan []byte

	mu       sync.Mutex
	nickname string

	registered bool
	room       int

	closeOnce    sync.Once
	teardownOnce sync.Once
}

func newSession(conn chat.Conn, registry *chat.Registry, replies store.ReplyLog, logger *slog.Logger) *Session {
	id := uuid.NewString()[:8]
	return &Session{
		id:       id,
		conn:     conn,
		registry: registry,
		replies:  replies,
		logger:   logger.With("session", id, "addr", conn.RemoteAddr()),
		outgoing: make(chan []byte, outgoingBuffer),
	}
}

// Nickname implements chat.Participant.
func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

func (s *Session) setNickname(name string) {
	s.mu.Lock()
	s.nickname = name
	s.mu.Unlock()
}

// Deliver implements chat.Participant. It never blocks: a session whose
// queue is full is cut loose by closing its connection, which funnels the
// teardown through the usual read-error path.
func (s *Session) Deliver(body []byte) {
	select {
	case s.outgoing <- body:
	default:
		s.logger.Warn("write queue full, dropping connection")
		s.Close()
	}
}

// Close shuts the connection down and unblocks both loops. Safe to call
// from any goroutine, any number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

// run drives the read and write loops until either fails, then tears the
// session down exactly once.
func (s *Session) run(ctx context.Context) {
	s.logger.Info("session started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A canceled context must unblock the read loop too.
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.readLoop() })
	group.Go(func() error { return s.writeLoop(ctx) })

	err := group.Wait()
	s.teardown()
	s.logger.Info("session closed", "error", err)
}

func (s *Session) readLoop() error {
	for {
		body, err := s.conn.ReadBody()
		if err != nil {
			return err
		}
		if err := s.handle(body); err != nil {
			// Malformed control data: close without a reply.
			return err
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-s.outgoing:
			if err := s.conn.WriteBody(body); err != nil {
				return err
			}
		}
	}
}

// teardown releases the nickname and leaves the current room, exactly
// once. Read and write errors for the same session race here; the
// departure broadcast must not double-fire.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		if !s.registered {
			return
		}
		s.registry.ReleaseName(s.Nickname())
		s.registry.Leave(s.room, s)
	})
}

// handle dispatches one inbound body according to the session state and
// the control tag table.
func (s *Session) handle(body []byte) error {
	if !s.registered {
		name := string(body)
		if protocol.ClassifyRequest(body) == protocol.RequestName {
			name = name[1:]
		}
		s.register(name)
		return nil
	}

	switch protocol.ClassifyRequest(body) {
	case protocol.RequestName:
		s.register(string(body[1:]))
	case protocol.RequestSwitch:
		index, err := protocol.RoomIndex(body)
		if err != nil {
			return fmt.Errorf("switch request: %w", err)
		}
		s.switchRoom(index)
	case protocol.RequestRename:
		name := string(body[1:])
		s.logger.Info("room renamed", "room", s.room, "name", name)
		s.registry.Rename(s.room, name)
	case protocol.RequestDelete:
		index, err := protocol.RoomIndex(body)
		if err != nil {
			return fmt.Errorf("delete request: %w", err)
		}
		s.deleteRoom(index)
	case protocol.RequestList:
		s.Deliver([]byte(s.registry.Listing()))
	default:
		s.chat(body)
	}
	return nil
}

// register claims a nickname. On collision the session keeps its previous
// state (still unregistered on first contact) and the client is expected
// to retry with a fresh name.
func (s *Session) register(name string) {
	if !s.registry.RegisterName(name) {
		s.logger.Info("nickname collision", "nickname", name)
		s.Deliver([]byte(protocol.ReplyNameTaken))
		return
	}

	if old := s.Nickname(); old != "" {
		s.registry.ReleaseName(old)
	}
	s.setNickname(name)

	if !s.registered {
		s.registered = true
		s.room = 0
		s.registry.Join(0, s)
	}
	s.logger.Info("nickname registered", "nickname", name)
	s.Deliver([]byte(protocol.ReplyNameAccepted))
}

// switchRoom moves the session to another slot. An inactive target is
// joined anyway; it shows as missing until someone names it. The replayed
// recent messages are queued by the switch itself, so the reply below
// always trails them.
func (s *Session) switchRoom(index int) {
	s.logger.Info("switching room", "from", s.room, "to", index)
	name, existed := s.registry.Switch(s.room, index, s)
	s.room = index
	if existed {
		s.Deliver(protocol.RoomNamedReply(name))
	} else {
		s.Deliver([]byte(protocol.ReplyRoomMissing))
	}
}

func (s *Session) deleteRoom(index int) {
	if !s.registry.Delete(index) {
		s.Deliver([]byte(protocol.ReplyDeleteRejected))
		return
	}
	s.logger.Info("room deleted", "room", index)
	s.Deliver([]byte(protocol.ReplyDeleteAccepted))
}

// chat records the reply text and broadcasts the full line to the current
// room, sender included.
func (s *Session) chat(body []byte) {
	if reply, ok := protocol.ReplyText(string(body)); ok {
		if _, err := s.replies.Increment(reply); err != nil {
			s.logger.Warn("reply log update failed", "error", err)
		}
	}
	s.registry.Broadcast(s.room, body)
}
