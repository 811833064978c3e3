package dag

import "github.com/pkg/errors"

// ErrStopWalk ends a Walk early without reporting an error.
var ErrStopWalk = errors.New("stop walk")

// Graph reads commit linkage out of an ObjectStore. It never writes.
type Graph struct {
	store *ObjectStore
}

// NewGraph creates a Graph over the commit store.
func NewGraph(store *ObjectStore) *Graph {
	return &Graph{store: store}
}

// Walk follows first parents from id to the root, calling fn for each
// commit, newest first.
func (g *Graph) Walk(id string, fn func(id string, c *Commit) error) error {
	for id != "" {
		c, err := g.store.LoadCommit(id)
		if err != nil {
			return err
		}
		if err := fn(id, c); err != nil {
			if err == ErrStopWalk {
				return nil
			}
			return err
		}
		id = c.Parent
	}
	return nil
}

// History returns the first-parent chain from id as log entries, newest first.
func (g *Graph) History(id string) ([]LogEntry, error) {
	var entries []LogEntry
	err := g.Walk(id, func(id string, c *Commit) error {
		entries = append(entries, EntryFor(id, c))
		return nil
	})
	return entries, err
}
