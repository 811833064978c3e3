package dag

import (
	"sort"
	"strings"

	"github.com/systemshift/gitlet/internal/errs"
)

// Index records every commit ever created: its message, for find, and its
// abbreviated-ID prefix, for resolving short operands. It is persisted as
// part of the repository's metadata record.
type Index struct {
	Messages map[string]string   `msgpack:"messages"` // commit ID -> message
	Abbrev   map[string][]string `msgpack:"abbrev"`   // AbbrevLength prefix -> full IDs
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Messages: map[string]string{},
		Abbrev:   map[string][]string{},
	}
}

// normalize fills nil maps left by decoding an empty record.
func (x *Index) normalize() {
	if x.Messages == nil {
		x.Messages = map[string]string{}
	}
	if x.Abbrev == nil {
		x.Abbrev = map[string][]string{}
	}
}

// Add records commit id with its message. Re-adding an ID is a no-op.
func (x *Index) Add(id, message string) {
	x.normalize()
	if _, ok := x.Messages[id]; ok {
		return
	}
	x.Messages[id] = message
	p := abbrev(id)
	x.Abbrev[p] = append(x.Abbrev[p], id)
	sort.Strings(x.Abbrev[p])
}

// Has reports whether id is a known commit.
func (x *Index) Has(id string) bool {
	_, ok := x.Messages[id]
	return ok
}

// IDs returns every known commit ID, sorted.
func (x *Index) IDs() []string {
	ids := make([]string, 0, len(x.Messages))
	for id := range x.Messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Find returns the IDs of all commits whose message is exactly message.
func (x *Index) Find(message string) ([]string, error) {
	var ids []string
	for id, msg := range x.Messages {
		if msg == message {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errs.New(errs.KindNotFound, "Found no commit with that message.")
	}
	sort.Strings(ids)
	return ids, nil
}

// Resolve expands a full or abbreviated commit ID. A prefix that matches
// more than one commit is an error rather than an arbitrary pick.
func (x *Index) Resolve(op string) (string, error) {
	op = strings.ToLower(op)
	if len(op) == IDLength {
		if !x.Has(op) {
			return "", errs.New(errs.KindNotFound, "No commit with that id exists.")
		}
		return op, nil
	}
	if op == "" || len(op) > IDLength {
		return "", errs.New(errs.KindAmbiguousID, "No commit with that id exists.")
	}

	var candidates []string
	if len(op) >= AbbrevLength {
		candidates = x.Abbrev[op[:AbbrevLength]]
	} else {
		candidates = x.IDs()
	}
	var matches []string
	for _, id := range candidates {
		if strings.HasPrefix(id, op) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.New(errs.KindAmbiguousID, "No commit with that id exists.")
	case 1:
		return matches[0], nil
	default:
		return "", errs.Newf(errs.KindAmbiguousID, "Ambiguous commit id: %s", op)
	}
}
