package chat_test

import (
	"fmt"
	"testing"

	"superchat/internal/chat"
)

// testParticipant records delivered bodies.
type testParticipant struct {
	nickname string
	received []string
}

func (p *testParticipant) Deliver(body []byte) { p.received = append(p.received, string(body)) }
func (p *testParticipant) Nickname() string    { return p.nickname }

func TestRoom_JoinLeaveAccounting(t *testing.T) {
	room := chat.NewRoom()

	a := &testParticipant{nickname: "a"}
	b := &testParticipant{nickname: "b"}

	room.Join(a)
	room.Join(b)
	if got := room.Participants(); got != 2 {
		t.Fatalf("Participants() = %d, want 2", got)
	}

	room.Leave(a)
	if got := room.Participants(); got != 1 {
		t.Fatalf("Participants() = %d, want 1", got)
	}

	// Leaving twice must not go negative.
	room.Leave(a)
	if got := room.Participants(); got != 1 {
		t.Fatalf("Participants() after duplicate leave = %d, want 1", got)
	}

	room.Leave(b)
	if got := room.Participants(); got != 0 {
		t.Fatalf("Participants() = %d, want 0", got)
	}
}

func TestRoom_LeaveBroadcastsDeparture(t *testing.T) {
	room := chat.NewRoom()

	leaver := &testParticipant{nickname: "alice"}
	stayer := &testParticipant{nickname: "bob"}
	room.Join(leaver)
	room.Join(stayer)

	room.Leave(leaver)

	if len(stayer.received) != 1 || stayer.received[0] != "alice has left the chat." {
		t.Errorf("stayer received %q, want departure line", stayer.received)
	}
	if len(leaver.received) != 0 {
		t.Errorf("leaver received %q after leaving", leaver.received)
	}
}

func TestRoom_DeliverIncludesSender(t *testing.T) {
	room := chat.NewRoom()

	sender := &testParticipant{nickname: "alice"}
	other := &testParticipant{nickname: "bob"}
	room.Join(sender)
	room.Join(other)

	room.Deliver([]byte("alice [10:00] : hi"))

	for _, p := range []*testParticipant{sender, other} {
		if len(p.received) != 1 || p.received[0] != "alice [10:00] : hi" {
			t.Errorf("%s received %q", p.Nickname(), p.received)
		}
	}
}

func TestRoom_JoinReplaysRecentInOrder(t *testing.T) {
	room := chat.NewRoom()
	for i := 0; i < 3; i++ {
		room.Deliver([]byte(fmt.Sprintf("line %d", i)))
	}

	late := &testParticipant{nickname: "late"}
	room.Join(late)

	want := []string{"line 0", "line 1", "line 2"}
	if len(late.received) != len(want) {
		t.Fatalf("replayed %d messages, want %d", len(late.received), len(want))
	}
	for i, line := range want {
		if late.received[i] != line {
			t.Errorf("replay[%d] = %q, want %q", i, late.received[i], line)
		}
	}
}

func TestRoom_RecentBufferEvictsOldestFirst(t *testing.T) {
	room := chat.NewRoom()
	for i := 0; i < chat.MaxRecentMessages+10; i++ {
		room.Deliver([]byte(fmt.Sprintf("line %d", i)))
	}
	if got := room.Recent(); got != chat.MaxRecentMessages {
		t.Fatalf("Recent() = %d, want %d", got, chat.MaxRecentMessages)
	}

	late := &testParticipant{}
	room.Join(late)
	if got := late.received[0]; got != "line 10" {
		t.Errorf("oldest surviving message = %q, want %q", got, "line 10")
	}
	if got := late.received[len(late.received)-1]; got != fmt.Sprintf("line %d", chat.MaxRecentMessages+9) {
		t.Errorf("newest message = %q", got)
	}
}

func TestRoom_ClearRecent(t *testing.T) {
	room := chat.NewRoom()
	room.Deliver([]byte("line"))
	room.ClearRecent()
	if got := room.Recent(); got != 0 {
		t.Errorf("Recent() after clear = %d, want 0", got)
	}
}
