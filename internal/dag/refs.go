package dag

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/errs"
)

// RefStore manages branch name -> commit ID mappings as files.
// Each ref is a file in the refs/ directory whose content is the hex ID.
type RefStore struct {
	dir string
}

// NewRefStore creates a RefStore at the given directory.
func NewRefStore(dir string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create refs dir")
	}
	return &RefStore{dir: dir}, nil
}

// ValidRefName reports whether name can be used as a ref filename.
func ValidRefName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// Set writes a ref mapping name -> id.
func (r *RefStore) Set(name, id string) error {
	return SafeWrite(filepath.Join(r.dir, name), []byte(id), 0644)
}

// Get resolves a branch name to a commit ID.
func (r *RefStore) Get(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if os.IsNotExist(err) {
		return "", errs.Newf(errs.KindNotFound, "ref not found: %s", name)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read ref %s", name)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes a ref.
func (r *RefStore) Delete(name string) error {
	if err := os.Remove(filepath.Join(r.dir, name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete ref %s", name)
	}
	return nil
}

// Has checks if a ref exists.
func (r *RefStore) Has(name string) bool {
	_, err := os.Stat(filepath.Join(r.dir, name))
	return err == nil
}

// List returns all ref names, sorted.
func (r *RefStore) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list refs")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !ValidRefName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
