package chat

import (
	"fmt"
	"strings"
	"sync"

	"superchat/pkg/protocol"
)

// LobbyName is the fixed name of room 0. The lobby is always active and
// can never be deleted.
const LobbyName = "MAIN LOBBY"

// Registry owns the ten fixed room slots and the process-wide set of
// connected nicknames. One mutex serializes every mutation, standing in
// for the single-threaded reactor the protocol was designed around:
// between two operations the registry is always in a consistent state,
// and delivery order to a room's participants follows the order in which
// operations take the lock.
type Registry struct {
	mu    sync.Mutex
	rooms [protocol.NumRooms]*Room
	names map[string]struct{}
}

// NewRegistry creates the slots with room 0 active as the main lobby.
func NewRegistry() *Registry {
	g := &Registry{names: make(map[string]struct{})}
	for i := range g.rooms {
		g.rooms[i] = NewRoom()
	}
	g.rooms[0].SetName(LobbyName)
	return g
}

// RegisterName claims a nickname. Nicknames are case-sensitive and unique
// across connected sessions; a second claim fails and leaves the first
// holder intact.
func (g *Registry) RegisterName(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.names[name]; taken {
		return false
	}
	g.names[name] = struct{}{}
	return true
}

// ReleaseName gives a nickname back. Releasing an unknown name is a
// no-op, which keeps session teardown idempotent.
func (g *Registry) ReleaseName(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.names, name)
}

// Join adds p to room index, replaying its recent messages to p.
func (g *Registry) Join(index int, p Participant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[index].Join(p)
}

// Leave removes p from room index, broadcasting the departure to the
// remaining participants.
func (g *Registry) Leave(index int, p Participant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[index].Leave(p)
}

// Switch moves p from room from to room to in one step: the departure
// broadcast, the join and its replay all happen under the same lock, so
// no other delivery interleaves. It returns the target's name and whether
// the target was active; an inactive target is joined anyway and sits
// unnamed until someone renames it.
func (g *Registry) Switch(from, to int, p Participant) (name string, existed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[from].Leave(p)
	target := g.rooms[to]
	existed = target.Active()
	target.Join(p)
	return target.Name(), existed
}

// Broadcast delivers body to every participant of room index, sender
// included, and records it in the replay buffer.
func (g *Registry) Broadcast(index int, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[index].Deliver(body)
}

// Rename names room index. The first rename after a switch into an
// inactive slot is what activates the room.
func (g *Registry) Rename(index int, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[index].SetName(name)
}

// Delete deactivates room index and reports whether it did. The lobby,
// inactive slots and occupied rooms are all rejected.
func (g *Registry) Delete(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.rooms[index]
	if index == 0 || !room.Active() || room.Participants() > 0 {
		return false
	}
	room.SetName("")
	room.ClearRecent()
	return true
}

// Listing formats the active rooms for a list-rooms reply.
func (g *Registry) Listing() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var b strings.Builder
	b.WriteString(protocol.ListingPrefix + "Number    Name of Chatroom")
	for i, room := range g.rooms {
		if room.Active() {
			fmt.Fprintf(&b, "\n\t     %d      %s", i, room.Name())
		}
	}
	return b.String()
}

// RoomName returns the name of room index, empty when inactive.
func (g *Registry) RoomName(index int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[index].Name()
}

// Participants returns the participant count of room index.
func (g *Registry) Participants(index int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[index].Participants()
}
