package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"superchat/internal/store"
)

// testBanStore exercises the BanStore contract shared by both backends.
func testBanStore(t *testing.T, bans store.BanStore) {
	t.Helper()

	// A never-written owner has an empty list.
	banned, err := bans.IsBanned("alice", "bob")
	if err != nil {
		t.Fatalf("IsBanned() error = %v", err)
	}
	if banned {
		t.Fatal("IsBanned() = true before any ban")
	}

	added, err := bans.Ban("alice", "bob")
	if err != nil || !added {
		t.Fatalf("Ban() = %v, %v; want true, nil", added, err)
	}

	// Banning twice leaves exactly one entry.
	added, err = bans.Ban("alice", "bob")
	if err != nil {
		t.Fatalf("Ban() error = %v", err)
	}
	if added {
		t.Error("second Ban() reported a new entry")
	}
	list, err := bans.Banned("alice")
	if err != nil {
		t.Fatalf("Banned() error = %v", err)
	}
	if len(list) != 1 || list[0] != "bob" {
		t.Errorf("Banned() = %q, want [bob]", list)
	}

	// The ban is scoped to its owner.
	banned, err = bans.IsBanned("carol", "bob")
	if err != nil {
		t.Fatalf("IsBanned() error = %v", err)
	}
	if banned {
		t.Error("ban leaked to another owner")
	}

	removed, err := bans.Unban("alice", "bob")
	if err != nil || !removed {
		t.Fatalf("Unban() = %v, %v; want true, nil", removed, err)
	}
	removed, err = bans.Unban("alice", "bob")
	if err != nil {
		t.Fatalf("Unban() error = %v", err)
	}
	if removed {
		t.Error("second Unban() reported a removal")
	}
}

// testReplyLog exercises the ReplyLog contract shared by both backends.
func testReplyLog(t *testing.T, replies store.ReplyLog) {
	t.Helper()

	n, err := replies.Count("sounds good")
	if err != nil || n != 0 {
		t.Fatalf("Count(unseen) = %d, %v; want 0, nil", n, err)
	}

	for want := 1; want <= 3; want++ {
		n, err = replies.Increment("sounds good")
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if n != want {
			t.Errorf("Increment() = %d, want %d", n, want)
		}
	}

	// Other entries stay untouched.
	if _, err := replies.Increment("no"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	n, err = replies.Count("sounds good")
	if err != nil || n != 3 {
		t.Errorf("Count() = %d, %v; want 3, nil", n, err)
	}
}

func TestFileBanStore(t *testing.T) {
	testBanStore(t, store.NewFileBanStore(t.TempDir()))
}

func TestFileReplyLog(t *testing.T) {
	testReplyLog(t, store.NewFileReplyLog(t.TempDir()))
}

func TestFileBanStore_RecordFormat(t *testing.T) {
	dir := t.TempDir()
	bans := store.NewFileBanStore(dir)
	for _, nick := range []string{"bob", "carol"} {
		if _, err := bans.Ban("alice", nick); err != nil {
			t.Fatalf("Ban(%s) error = %v", nick, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "alice_ban_list.txt"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if string(data) != "bob\ncarol\n" {
		t.Errorf("record = %q, want one nickname per line", data)
	}
}

func TestFileReplyLog_RecordFormat(t *testing.T) {
	dir := t.TempDir()
	replies := store.NewFileReplyLog(dir)

	// Reply text may itself contain spaces; the count is the final token.
	if _, err := replies.Increment("see you soon"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if _, err := replies.Increment("ok"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if _, err := replies.Increment("see you soon"); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "superchat_replies.txt"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("record has %d lines, want 2: %q", len(lines), data)
	}
	if lines[0] != "see you soon 2" || lines[1] != "ok 1" {
		t.Errorf("record lines = %q", lines)
	}
}

func TestFileStores_NoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	bans := store.NewFileBanStore(dir)
	if _, err := bans.Ban("alice", "bob"); err != nil {
		t.Fatalf("Ban() error = %v", err)
	}
	if _, err := bans.Unban("alice", "bob"); err != nil {
		t.Fatalf("Unban() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
