package repo

import "sort"

// Stage is the set of pending changes for the next commit: files staged for
// addition (filename -> blob ID in the stage store) and files queued for
// removal.
type Stage struct {
	Added   map[string]string `msgpack:"staged"`
	Removed map[string]bool   `msgpack:"removed"`
}

// NewStage returns an empty stage.
func NewStage() *Stage {
	return &Stage{Added: map[string]string{}, Removed: map[string]bool{}}
}

func (s *Stage) normalize() {
	if s.Added == nil {
		s.Added = map[string]string{}
	}
	if s.Removed == nil {
		s.Removed = map[string]bool{}
	}
}

// Empty reports whether nothing is staged or queued for removal.
func (s *Stage) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0
}

// Add stages blob id for name and cancels any pending removal of name.
func (s *Stage) Add(name, id string) {
	s.Added[name] = id
	delete(s.Removed, name)
}

// Staged returns the staged blob ID for name.
func (s *Stage) Staged(name string) (string, bool) {
	id, ok := s.Added[name]
	return id, ok
}

// Unstage discards any staged version of name.
func (s *Stage) Unstage(name string) {
	delete(s.Added, name)
}

// MarkRemoved queues name for removal in the next commit.
func (s *Stage) MarkRemoved(name string) {
	s.Removed[name] = true
}

// Unremove cancels a pending removal of name.
func (s *Stage) Unremove(name string) {
	delete(s.Removed, name)
}

// IsRemoved reports whether name is queued for removal.
func (s *Stage) IsRemoved(name string) bool {
	return s.Removed[name]
}

// Clear empties the stage.
func (s *Stage) Clear() {
	s.Added = map[string]string{}
	s.Removed = map[string]bool{}
}

// AddedNames returns the staged filenames, sorted.
func (s *Stage) AddedNames() []string {
	names := make([]string, 0, len(s.Added))
	for name := range s.Added {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemovedNames returns the filenames queued for removal, sorted.
func (s *Stage) RemovedNames() []string {
	names := make([]string, 0, len(s.Removed))
	for name := range s.Removed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
