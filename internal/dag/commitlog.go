package dag

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateFormat is the layout of the Date: line in rendered logs.
const DateFormat = "Mon Jan 2 15:04:05 2006 -0700"

const logSeparator = "==="

// LogEntry is one commit as it appears in a branch or global log.
type LogEntry struct {
	ID          string
	Parent      string
	MergeParent string
	Timestamp   time.Time
	Message     string
}

// EntryFor builds the log entry for commit c stored under id.
func EntryFor(id string, c *Commit) LogEntry {
	return LogEntry{
		ID:          id,
		Parent:      c.Parent,
		MergeParent: c.MergeParent,
		Timestamp:   c.Timestamp,
		Message:     c.Message,
	}
}

func abbrev(id string) string {
	if len(id) > AbbrevLength {
		return id[:AbbrevLength]
	}
	return id
}

// Format renders the entry with dates shown in loc.
func (e LogEntry) Format(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	b.WriteString(logSeparator + "\n")
	b.WriteString("commit " + e.ID + "\n")
	if e.MergeParent != "" {
		b.WriteString("Merge: " + abbrev(e.Parent) + " " + abbrev(e.MergeParent) + "\n")
	}
	b.WriteString("Date: " + e.Timestamp.In(loc).Format(DateFormat) + "\n")
	b.WriteString(e.Message + "\n")
	b.WriteString("\n")
	return b.String()
}

// LogStore holds the materialized, newest-first log text of every branch
// plus the global log. Entries are prepended at commit time, never
// recomputed on read.
type LogStore struct {
	dir        string // per-branch logs
	globalPath string
}

// NewLogStore creates a LogStore with branch logs under dir.
func NewLogStore(dir, globalPath string) (*LogStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create logs dir")
	}
	return &LogStore{dir: dir, globalPath: globalPath}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read log %s", path)
	}
	return string(data), nil
}

// Branch returns the log text of branch.
func (l *LogStore) Branch(branch string) (string, error) {
	return readText(filepath.Join(l.dir, branch))
}

// Global returns the global log text.
func (l *LogStore) Global() (string, error) {
	return readText(l.globalPath)
}

// PrependBranch adds text to the top of branch's log.
func (l *LogStore) PrependBranch(branch, text string) error {
	return SafePrepend(filepath.Join(l.dir, branch), []byte(text))
}

// PrependGlobal adds text to the top of the global log.
func (l *LogStore) PrependGlobal(text string) error {
	return SafePrepend(l.globalPath, []byte(text))
}

// WriteBranch replaces branch's log.
func (l *LogStore) WriteBranch(branch, text string) error {
	return SafeWrite(filepath.Join(l.dir, branch), []byte(text), 0644)
}

// DeleteBranch removes branch's log.
func (l *LogStore) DeleteBranch(branch string) error {
	if err := os.Remove(filepath.Join(l.dir, branch)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete log %s", branch)
	}
	return nil
}
