package chat_test

import (
	"strings"
	"testing"

	"superchat/internal/chat"
)

func TestRegistry_LobbyAlwaysActive(t *testing.T) {
	g := chat.NewRegistry()
	if got := g.RoomName(0); got != chat.LobbyName {
		t.Errorf("RoomName(0) = %q, want %q", got, chat.LobbyName)
	}
	for i := 1; i < 10; i++ {
		if got := g.RoomName(i); got != "" {
			t.Errorf("RoomName(%d) = %q, want inactive", i, got)
		}
	}
}

func TestRegistry_NicknameUniqueness(t *testing.T) {
	g := chat.NewRegistry()

	if !g.RegisterName("alice") {
		t.Fatal("first RegisterName(alice) failed")
	}
	if g.RegisterName("alice") {
		t.Fatal("second RegisterName(alice) succeeded")
	}

	// Nicknames are case-sensitive.
	if !g.RegisterName("Alice") {
		t.Error("RegisterName(Alice) failed")
	}

	g.ReleaseName("alice")
	if !g.RegisterName("alice") {
		t.Error("RegisterName(alice) failed after release")
	}

	// Releasing an unknown name is a no-op.
	g.ReleaseName("nobody")
}

func TestRegistry_SwitchToInactiveRoom(t *testing.T) {
	g := chat.NewRegistry()
	p := &testParticipant{nickname: "alice"}
	g.Join(0, p)

	name, existed := g.Switch(0, 3, p)
	if existed || name != "" {
		t.Errorf("Switch(0, 3) = %q, %v; want inactive", name, existed)
	}
	if got := g.Participants(3); got != 1 {
		t.Errorf("Participants(3) = %d, want 1", got)
	}
	if got := g.Participants(0); got != 0 {
		t.Errorf("Participants(0) = %d, want 0", got)
	}

	// The slot exists but stays inactive until renamed.
	g.Rename(3, "Team Chat")
	if got := g.RoomName(3); got != "Team Chat" {
		t.Errorf("RoomName(3) = %q, want %q", got, "Team Chat")
	}
}

func TestRegistry_SwitchToActiveRoomReportsName(t *testing.T) {
	g := chat.NewRegistry()
	p := &testParticipant{nickname: "alice"}
	g.Join(0, p)
	g.Rename(5, "Den")

	name, existed := g.Switch(0, 5, p)
	if !existed || name != "Den" {
		t.Errorf("Switch(0, 5) = %q, %v; want Den, true", name, existed)
	}
}

func TestRegistry_Delete(t *testing.T) {
	g := chat.NewRegistry()
	p := &testParticipant{nickname: "alice"}

	// The lobby can never be deleted.
	if g.Delete(0) {
		t.Error("Delete(0) succeeded")
	}

	// An inactive slot cannot be deleted.
	if g.Delete(3) {
		t.Error("Delete(inactive) succeeded")
	}

	// An occupied room cannot be deleted.
	g.Join(0, p)
	g.Switch(0, 3, p)
	g.Rename(3, "Team Chat")
	if g.Delete(3) {
		t.Error("Delete(occupied) succeeded")
	}

	// Once empty it can, and the slot reverts to inactive.
	g.Switch(3, 0, p)
	if !g.Delete(3) {
		t.Error("Delete(empty) failed")
	}
	if got := g.RoomName(3); got != "" {
		t.Errorf("RoomName(3) after delete = %q, want inactive", got)
	}
}

func TestRegistry_Listing(t *testing.T) {
	g := chat.NewRegistry()
	g.Rename(3, "Team Chat")

	listing := g.Listing()
	if !strings.HasPrefix(listing, "[]LOR:Number    Name of Chatroom") {
		t.Errorf("Listing() = %q, missing header", listing)
	}
	if !strings.Contains(listing, "0      MAIN LOBBY") {
		t.Errorf("Listing() = %q, missing lobby", listing)
	}
	if !strings.Contains(listing, "3      Team Chat") {
		t.Errorf("Listing() = %q, missing room 3", listing)
	}
	if strings.Contains(listing, "1      ") {
		t.Errorf("Listing() = %q, contains inactive slot", listing)
	}
}

func TestRegistry_BroadcastReachesRoomOnly(t *testing.T) {
	g := chat.NewRegistry()
	inLobby := &testParticipant{nickname: "a"}
	elsewhere := &testParticipant{nickname: "b"}
	g.Join(0, inLobby)
	g.Join(0, elsewhere)
	g.Switch(0, 4, elsewhere)

	elsewhere.received = nil // drop the departure broadcast bookkeeping
	g.Broadcast(0, []byte("a [10:00] : lobby only"))

	if len(inLobby.received) == 0 || inLobby.received[len(inLobby.received)-1] != "a [10:00] : lobby only" {
		t.Errorf("lobby participant received %q", inLobby.received)
	}
	for _, line := range elsewhere.received {
		if line == "a [10:00] : lobby only" {
			t.Error("participant of another room received the broadcast")
		}
	}
}
