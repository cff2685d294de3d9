package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// replyLogFile is the name of the reply-frequency record. Lines read
// "<reply text> <count>", with the count as the final space-delimited
// token.
const replyLogFile = "superchat_replies.txt"

// FileBanStore keeps one line-oriented file per owner, named
// "<owner>_ban_list.txt", one banned nickname per line. A missing file is
// an empty list; the first ban creates it.
type FileBanStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileBanStore stores ban records under dir.
func NewFileBanStore(dir string) *FileBanStore {
	return &FileBanStore{dir: dir}
}

func (s *FileBanStore) path(owner string) string {
	return filepath.Join(s.dir, owner+"_ban_list.txt")
}

// Ban implements BanStore.
func (s *FileBanStore) Ban(owner, nick string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.path(owner))
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if line == nick {
			return false, nil
		}
	}
	return true, writeLines(s.path(owner), append(lines, nick))
}

// Unban implements BanStore.
func (s *FileBanStore) Unban(owner, nick string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.path(owner))
	if err != nil {
		return false, err
	}
	kept := lines[:0]
	found := false
	for _, line := range lines {
		if line == nick {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return false, nil
	}
	return true, writeLines(s.path(owner), kept)
}

// IsBanned implements BanStore.
func (s *FileBanStore) IsBanned(owner, nick string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.path(owner))
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if line == nick {
			return true, nil
		}
	}
	return false, nil
}

// Banned implements BanStore.
func (s *FileBanStore) Banned(owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLines(s.path(owner))
}

// FileReplyLog keeps the reply-frequency record in a single flat file
// under dir.
type FileReplyLog struct {
	mu   sync.Mutex
	path string
}

// NewFileReplyLog stores the reply log under dir.
func NewFileReplyLog(dir string) *FileReplyLog {
	return &FileReplyLog{path: filepath.Join(dir, replyLogFile)}
}

// Increment implements ReplyLog.
func (l *FileReplyLog) Increment(reply string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := readLines(l.path)
	if err != nil {
		return 0, err
	}
	count := 1
	found := false
	for i, line := range lines {
		text, n, ok := splitReplyLine(line)
		if ok && text == reply {
			count = n + 1
			lines[i] = reply + " " + strconv.Itoa(count)
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, reply+" 1")
	}
	return count, writeLines(l.path, lines)
}

// Count implements ReplyLog.
func (l *FileReplyLog) Count(reply string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := readLines(l.path)
	if err != nil {
		return 0, err
	}
	for _, line := range lines {
		if text, n, ok := splitReplyLine(line); ok && text == reply {
			return n, nil
		}
	}
	return 0, nil
}

// splitReplyLine splits "<text> <count>" on the last space.
func splitReplyLine(line string) (text string, count int, ok bool) {
	i := strings.LastIndex(line, " ")
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(line[i+1:])
	if err != nil {
		return "", 0, false
	}
	return line[:i], n, true
}

// readLines reads a record file. A missing file is an empty record, not
// an error.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read record %s", path)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// writeLines replaces a record file atomically: the new content goes to a
// temp file in the same directory, which is then renamed over the
// original. Entries may need in-place correction (unban, count bump), so
// the whole record is rewritten rather than appended.
func writeLines(path string, lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "create temp record")
	}
	var content strings.Builder
	for _, line := range lines {
		content.WriteString(line)
		content.WriteByte('\n')
	}
	if _, err := tmp.WriteString(content.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write record %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "close record %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replace record %s", path)
	}
	return nil
}
