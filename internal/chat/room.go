package chat

// MaxRecentMessages bounds the per-room replay buffer. The oldest message
// is evicted first once the buffer is full.
const MaxRecentMessages = 100

// Room is one chat room slot: a participant set, an optional name and a
// bounded ring of recently delivered messages. An empty name means the
// slot is inactive (the wire protocol's "NULL" sentinel).
//
// Room does no locking of its own; the Registry serializes all access.
type Room struct {
	name         string
	participants map[Participant]struct{}
	recent       [][]byte
}

// NewRoom returns an inactive, empty room.
func NewRoom() *Room {
	return &Room{participants: make(map[Participant]struct{})}
}

// Active reports whether the slot currently holds a named room.
func (r *Room) Active() bool { return r.name != "" }

// Name returns the room name, empty when inactive.
func (r *Room) Name() string { return r.name }

// SetName renames the room. Renaming is effective immediately for the
// next listing or switch reply.
func (r *Room) SetName(name string) { r.name = name }

// Participants returns the number of joined participants.
func (r *Room) Participants() int { return len(r.participants) }

// Join adds p and replays the buffered recent messages to p only, in
// original arrival order. The replay does not re-trigger a broadcast.
func (r *Room) Join(p Participant) {
	r.participants[p] = struct{}{}
	for _, body := range r.recent {
		p.Deliver(body)
	}
}

// Leave removes p and tells the remaining participants that p left. The
// departure line goes through Deliver, so it lands in the replay buffer
// like any other message.
func (r *Room) Leave(p Participant) {
	delete(r.participants, p)
	r.Deliver([]byte(p.Nickname() + " has left the chat."))
}

// Deliver appends body to the replay buffer, evicting the oldest entry
// beyond MaxRecentMessages, then sends it to every participant. The
// sender is not excluded: a sender sees its own line echoed by the room,
// which keeps its view ordered like everyone else's.
func (r *Room) Deliver(body []byte) {
	stored := make([]byte, len(body))
	copy(stored, body)
	r.recent = append(r.recent, stored)
	if len(r.recent) > MaxRecentMessages {
		r.recent = r.recent[1:]
	}

	for p := range r.participants {
		p.Deliver(stored)
	}
}

// ClearRecent drops the replay buffer. Used when a room is deleted.
func (r *Room) ClearRecent() { r.recent = nil }

// Recent returns the buffered message count.
func (r *Room) Recent() int { return len(r.recent) }
