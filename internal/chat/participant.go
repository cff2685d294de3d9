package chat

// Participant is the capability a room needs from whoever joins it. Rooms
// hold these references instead of connections, so the broadcast engine
// never learns about sockets. The server session implements it; tests
// implement it with a slice.
type Participant interface {
	// Deliver queues body for ordered delivery to this participant. It
	// must not block: a participant that cannot keep up is expected to
	// disconnect itself rather than stall the room.
	Deliver(body []byte)

	// Nickname returns the registered nickname, or the empty string
	// before registration completes.
	Nickname() string
}
