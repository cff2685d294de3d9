// Package client implements the chat client: a framed TCP connection,
// a dispatcher that routes server bodies to whoever asked for them, and
// a ban filter applied to displayed chat lines.
package client

import (
	"log/slog"
	"sync"

	"superchat/internal/store"
	"superchat/pkg/protocol"
)

// SwitchResult is the outcome of a room switch.
type SwitchResult struct {
	// Name is the target room's name, empty when the room was inactive.
	Name string
	// Existed reports whether the target room was active.
	Existed bool
}

// Dispatcher routes inbound server bodies. Control replies answer a
// specific pending request and are handed over on single-slot channels;
// chat lines go through the ban filter and on to the display callback.
// Each control reply kind has at most one request in flight at a time,
// which is what lets a reply be matched to its request without ids.
type Dispatcher struct {
	display func(line string)
	bans    store.BanStore
	logger  *slog.Logger

	mu    sync.Mutex
	owner string

	nameResults   chan bool
	switchResults chan SwitchResult
	deleteResults chan bool
	listings      chan string
}

// NewDispatcher creates a dispatcher. display receives every chat line
// that survives the ban filter; bans may be nil to disable filtering.
func NewDispatcher(display func(string), bans store.BanStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		display:       display,
		bans:          bans,
		logger:        logger,
		nameResults:   make(chan bool, 1),
		switchResults: make(chan SwitchResult, 1),
		deleteResults: make(chan bool, 1),
		listings:      make(chan string, 1),
	}
}

// SetOwner names the ban list that filters incoming chat. Until it is
// called every line is displayed, matching a session that has not
// registered yet.
func (d *Dispatcher) SetOwner(owner string) {
	d.mu.Lock()
	d.owner = owner
	d.mu.Unlock()
}

func (d *Dispatcher) getOwner() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.owner
}

// NameResults delivers the outcome of a pending name registration.
func (d *Dispatcher) NameResults() <-chan bool { return d.nameResults }

// SwitchResults delivers the outcome of a pending room switch.
func (d *Dispatcher) SwitchResults() <-chan SwitchResult { return d.switchResults }

// DeleteResults delivers the outcome of a pending room deletion.
func (d *Dispatcher) DeleteResults() <-chan bool { return d.deleteResults }

// Listings delivers pending room-listing payloads.
func (d *Dispatcher) Listings() <-chan string { return d.listings }

// Dispatch routes one server body. It never blocks: a control reply that
// nobody is waiting for is logged and dropped.
func (d *Dispatcher) Dispatch(body []byte) {
	switch protocol.ClassifyReply(body) {
	case protocol.ReplyName:
		d.offerName(string(body) == protocol.ReplyNameAccepted)
	case protocol.ReplyRoom:
		d.offerSwitch(body)
	case protocol.ReplyDelete:
		d.offerDelete(string(body) == protocol.ReplyDeleteAccepted)
	case protocol.ReplyListing:
		d.offerListing(protocol.ListingPayload(body))
	default:
		d.chat(string(body))
	}
}

func (d *Dispatcher) offerName(accepted bool) {
	select {
	case d.nameResults <- accepted:
	default:
		d.logger.Warn("unsolicited name reply dropped")
	}
}

func (d *Dispatcher) offerSwitch(body []byte) {
	result := SwitchResult{}
	if string(body) != protocol.ReplyRoomMissing {
		result = SwitchResult{Name: string(body[1:]), Existed: true}
	}
	select {
	case d.switchResults <- result:
	default:
		d.logger.Warn("unsolicited switch reply dropped")
	}
}

func (d *Dispatcher) offerDelete(accepted bool) {
	select {
	case d.deleteResults <- accepted:
	default:
		d.logger.Warn("unsolicited delete reply dropped")
	}
}

func (d *Dispatcher) offerListing(listing string) {
	select {
	case d.listings <- listing:
	default:
		d.logger.Warn("unsolicited room listing dropped")
	}
}

// chat displays a line unless its sender is on the owner's ban list.
func (d *Dispatcher) chat(line string) {
	if owner := d.getOwner(); owner != "" && d.bans != nil {
		sender := protocol.ChatSender(line)
		if sender != "" {
			banned, err := d.bans.IsBanned(owner, sender)
			if err != nil {
				d.logger.Warn("ban lookup failed", "sender", sender, "error", err)
			} else if banned {
				return
			}
		}
	}
	d.display(line)
}
