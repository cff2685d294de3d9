// Package store persists the two side records of the chat system: per-owner
// ban lists and the reply-frequency log. Both sit behind small interfaces
// so the flat-file backend can be swapped for the embedded sqlite backend
// without touching callers.
package store

import (
	"fmt"
)

// BanStore is an owner-scoped set of blocked nicknames. A ban filters the
// banned nickname's messages from the owner's view only; nothing is
// removed from the room or from other participants' views.
type BanStore interface {
	// Ban adds nick to owner's ban list. It reports false when nick was
	// already banned; the list never holds duplicates.
	Ban(owner, nick string) (bool, error)

	// Unban removes nick from owner's ban list. It reports false when
	// nick was not on the list.
	Unban(owner, nick string) (bool, error)

	// IsBanned reports whether owner has banned nick.
	IsBanned(owner, nick string) (bool, error)

	// Banned returns owner's ban list.
	Banned(owner string) ([]string, error)
}

// ReplyLog counts how often each reply text has been sent. The key is the
// exact portion of a chat line after its "<nick> [hh:mm] : " prefix.
type ReplyLog interface {
	// Increment bumps the count for reply and returns the new value.
	Increment(reply string) (int, error)

	// Count returns the recorded count for reply, zero when unseen.
	Count(reply string) (int, error)
}

// Backends selectable through configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Stores bundles the opened stores with their shared closer.
type Stores struct {
	Bans    BanStore
	Replies ReplyLog

	closer func() error
}

// Open builds both stores on the requested backend. The file backend
// keeps its records under dir; the sqlite backend keeps everything in the
// database at dbPath.
func Open(backend, dir, dbPath string) (*Stores, error) {
	switch backend {
	case BackendFile:
		return &Stores{
			Bans:    NewFileBanStore(dir),
			Replies: NewFileReplyLog(dir),
			closer:  func() error { return nil },
		}, nil
	case BackendSQLite:
		db, err := openSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Bans:    &sqliteBanStore{db: db},
			Replies: &sqliteReplyLog{db: db},
			closer:  db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// Close releases backend resources.
func (s *Stores) Close() error { return s.closer() }
