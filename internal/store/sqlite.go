package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure-Go driver, registers as "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bans (
	owner    TEXT NOT NULL,
	nickname TEXT NOT NULL,
	UNIQUE (owner, nickname)
);
CREATE TABLE IF NOT EXISTS replies (
	reply TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);`

// openSQLite opens (creating if needed) the database at path and
// bootstraps the schema.
func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "bootstrap schema")
	}
	return db, nil
}

type sqliteBanStore struct {
	db *sql.DB
}

func (s *sqliteBanStore) Ban(owner, nick string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO bans (owner, nickname) VALUES (?, ?)`, owner, nick)
	if err != nil {
		return false, errors.Wrap(err, "insert ban")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "insert ban")
	}
	return n > 0, nil
}

func (s *sqliteBanStore) Unban(owner, nick string) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM bans WHERE owner = ? AND nickname = ?`, owner, nick)
	if err != nil {
		return false, errors.Wrap(err, "delete ban")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete ban")
	}
	return n > 0, nil
}

func (s *sqliteBanStore) IsBanned(owner, nick string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM bans WHERE owner = ? AND nickname = ?`, owner, nick).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "query ban")
	}
	return true, nil
}

func (s *sqliteBanStore) Banned(owner string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT nickname FROM bans WHERE owner = ? ORDER BY nickname`, owner)
	if err != nil {
		return nil, errors.Wrap(err, "query bans")
	}
	defer rows.Close()

	var nicks []string
	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return nil, errors.Wrap(err, "scan ban")
		}
		nicks = append(nicks, nick)
	}
	return nicks, errors.Wrap(rows.Err(), "iterate bans")
}

type sqliteReplyLog struct {
	db *sql.DB
}

func (l *sqliteReplyLog) Increment(reply string) (int, error) {
	_, err := l.db.Exec(
		`INSERT INTO replies (reply, count) VALUES (?, 1)
		 ON CONFLICT (reply) DO UPDATE SET count = count + 1`, reply)
	if err != nil {
		return 0, errors.Wrap(err, "increment reply")
	}
	return l.Count(reply)
}

func (l *sqliteReplyLog) Count(reply string) (int, error) {
	var count int
	err := l.db.QueryRow(
		`SELECT count FROM replies WHERE reply = ?`, reply).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "query reply count")
	}
	return count, nil
}
