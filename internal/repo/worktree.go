package repo

import (
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

// Worktree is the flat directory of user files next to .gitlet.
// Subdirectories and the .gitlet directory itself are never tracked.
type Worktree struct {
	root string
}

// NewWorktree returns the working tree rooted at root.
func NewWorktree(root string) *Worktree {
	return &Worktree{root: root}
}

// Root returns the working tree directory.
func (w *Worktree) Root() string {
	return w.root
}

// validName reports whether name refers to a top-level file. Names must be
// valid UTF-8 to survive the JSON encoding of blobs and commits.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." || name == GitletDir {
		return false
	}
	if !utf8.ValidString(name) {
		return false
	}
	return filepath.Base(name) == name && !filepath.IsAbs(name)
}

func (w *Worktree) path(name string) string {
	return filepath.Join(w.root, name)
}

// List returns the names of all plain files in the working tree, sorted.
func (w *Worktree) List() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, errors.Wrap(err, "list working tree")
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !validName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether name is a plain file in the working tree.
func (w *Worktree) Exists(name string) bool {
	if !validName(name) {
		return false
	}
	info, err := os.Stat(w.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the contents of name.
func (w *Worktree) Read(name string) ([]byte, error) {
	if !w.Exists(name) {
		return nil, errs.New(errs.KindNotFound, "File does not exist.")
	}
	data, err := os.ReadFile(w.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

// Write replaces name with data.
func (w *Worktree) Write(name string, data []byte) error {
	if !validName(name) {
		return errs.Newf(errs.KindInternal, "invalid working tree filename %q", name)
	}
	return dag.SafeWrite(w.path(name), data, 0644)
}

// Remove deletes name. A missing file is not an error.
func (w *Worktree) Remove(name string) error {
	if !validName(name) {
		return nil
	}
	if err := os.Remove(w.path(name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", name)
	}
	return nil
}

// BlobID returns the ID the current contents of name would be stored under.
func (w *Worktree) BlobID(name string) (string, error) {
	data, err := w.Read(name)
	if err != nil {
		return "", err
	}
	return dag.NewBlob(name, data).ID()
}
