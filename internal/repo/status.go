package repo

import (
	"sort"
	"strings"
)

// Modification is a working-tree change that is not staged.
type Modification struct {
	Name    string
	Deleted bool
}

func (m Modification) String() string {
	if m.Deleted {
		return m.Name + " (deleted)"
	}
	return m.Name + " (modified)"
}

// Status summarizes branches, the stage and the working tree.
type Status struct {
	Active    string
	Branches  []string
	Staged    []string
	Removed   []string
	Modified  []Modification
	Untracked []string
}

// Status diffs the working tree against the stage and the head commit.
func (r *Repository) Status() (*Status, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}
	files, err := r.Worktree.List()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Active:   r.active,
		Branches: r.Branches(),
		Staged:   r.stage.AddedNames(),
		Removed:  r.stage.RemovedNames(),
	}

	// changed compares the working-tree copy of name against want.
	changed := func(name, want string) (Modification, bool, error) {
		if !r.Worktree.Exists(name) {
			return Modification{Name: name, Deleted: true}, true, nil
		}
		got, err := r.Worktree.BlobID(name)
		if err != nil {
			return Modification{}, false, err
		}
		return Modification{Name: name}, got != want, nil
	}

	for _, name := range head.Files() {
		if _, staged := r.stage.Staged(name); staged || r.stage.IsRemoved(name) {
			continue
		}
		m, ok, err := changed(name, head.Blobs[name])
		if err != nil {
			return nil, err
		}
		if ok {
			st.Modified = append(st.Modified, m)
		}
	}
	for _, name := range st.Staged {
		m, ok, err := changed(name, r.stage.Added[name])
		if err != nil {
			return nil, err
		}
		if ok {
			st.Modified = append(st.Modified, m)
		}
	}
	sort.Slice(st.Modified, func(i, j int) bool { return st.Modified[i].Name < st.Modified[j].Name })

	for _, name := range files {
		_, staged := r.stage.Staged(name)
		_, tracked := head.Tracks(name)
		if (!staged && !tracked) || r.stage.IsRemoved(name) {
			st.Untracked = append(st.Untracked, name)
		}
	}
	return st, nil
}

// String renders the status report.
func (s *Status) String() string {
	var b strings.Builder
	section := func(title string, lines []string) {
		b.WriteString("=== " + title + " ===\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
		b.WriteString("\n")
	}

	branches := make([]string, len(s.Branches))
	for i, name := range s.Branches {
		if name == s.Active {
			name = "*" + name
		}
		branches[i] = name
	}
	mods := make([]string, len(s.Modified))
	for i, m := range s.Modified {
		mods[i] = m.String()
	}

	section("Branches", branches)
	section("Staged Files", s.Staged)
	section("Removed Files", s.Removed)
	section("Modifications Not Staged For Commit", mods)
	section("Untracked Files", s.Untracked)
	return b.String()
}
