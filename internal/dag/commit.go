package dag

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/errs"
)

// InitialMessage is the message of every repository's root commit.
const InitialMessage = "initial commit"

// Commit is an immutable snapshot: message, branch label, timestamp, parent
// linkage and the filename -> blob ID map. Its ID is not part of the object.
type Commit struct {
	Message     string            `json:"message"`
	Branch      string            `json:"branch"`
	Timestamp   time.Time         `json:"timestamp"`
	Parent      string            `json:"parent"`                 // "" for the root commit
	MergeParent string            `json:"merge_parent,omitempty"` // second parent of a merge
	Blobs       map[string]string `json:"blobs"`
}

// NewCommit builds a commit. Timestamps are normalized to UTC seconds so the
// encoding round-trips exactly.
func NewCommit(message, branch, parent string, blobs map[string]string, ts time.Time) *Commit {
	if blobs == nil {
		blobs = map[string]string{}
	}
	return &Commit{
		Message:   message,
		Branch:    branch,
		Timestamp: ts.UTC().Truncate(time.Second),
		Parent:    parent,
		Blobs:     blobs,
	}
}

// InitialCommit returns the root commit created by init: no files, no parent,
// timestamp at the Unix epoch. It hashes the same in every repository.
func InitialCommit(branch string) *Commit {
	return NewCommit(InitialMessage, branch, "", nil, time.Unix(0, 0))
}

// Encode returns the canonical on-disk form of c.
func (c *Commit) Encode() ([]byte, error) {
	return CanonicalJSON(c)
}

// ID returns the content hash of c.
func (c *Commit) ID() (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", errors.Wrap(err, "serialize commit")
	}
	return ComputeID(data)
}

// Parents returns the commit's parent IDs, first parent first.
func (c *Commit) Parents() []string {
	var ps []string
	if c.Parent != "" {
		ps = append(ps, c.Parent)
	}
	if c.MergeParent != "" {
		ps = append(ps, c.MergeParent)
	}
	return ps
}

// Tracks reports the blob ID recorded for name, if any.
func (c *Commit) Tracks(name string) (string, bool) {
	id, ok := c.Blobs[name]
	return id, ok
}

// Files returns the tracked filenames in sorted order.
func (c *Commit) Files() []string {
	names := make([]string, 0, len(c.Blobs))
	for name := range c.Blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CopyBlobs returns a mutable copy of the commit's file map.
func (c *Commit) CopyBlobs() map[string]string {
	m := make(map[string]string, len(c.Blobs))
	for k, v := range c.Blobs {
		m[k] = v
	}
	return m
}

// StoreCommit persists c and returns its ID.
func (s *ObjectStore) StoreCommit(c *Commit) (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", errors.Wrap(err, "serialize commit")
	}
	return s.Put(data)
}

// LoadCommit reads a commit by ID. The decoded commit must hash back to id.
func (s *ObjectStore) LoadCommit(id string) (*Commit, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal commit")
	}
	if c.Blobs == nil {
		c.Blobs = map[string]string{}
	}
	got, err := c.ID()
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, errs.Newf(errs.KindInternal, "commit %s does not verify (got %s)", id, got)
	}
	return &c, nil
}
