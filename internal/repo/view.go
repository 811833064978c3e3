package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

// View reads repository state straight from disk on every call. It is
// meant for long-lived readers such as a mount, which must observe commits
// made by later gitlet invocations.
type View struct {
	dir     string
	commits *dag.ObjectStore
	blobs   *dag.ObjectStore
	refs    *dag.RefStore
	logs    *dag.LogStore
}

// NewView opens a read-only view of the repository rooted at root.
func NewView(root string) (*View, error) {
	if !Exists(root) {
		return nil, errs.ErrNotInitialized
	}
	dir := filepath.Join(root, GitletDir)
	v := &View{dir: dir}
	var err error
	if v.commits, err = dag.NewObjectStore(filepath.Join(dir, "objects", "commits")); err != nil {
		return nil, err
	}
	if v.blobs, err = dag.NewObjectStore(filepath.Join(dir, "objects", "blobs")); err != nil {
		return nil, err
	}
	if v.refs, err = dag.NewRefStore(filepath.Join(dir, "refs")); err != nil {
		return nil, err
	}
	if v.logs, err = dag.NewLogStore(filepath.Join(dir, "logs"), filepath.Join(dir, "global-log")); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) Branches() ([]string, error)            { return v.refs.List() }
func (v *View) BranchHead(name string) (string, error) { return v.refs.Get(name) }
func (v *View) CommitIDs() ([]string, error)           { return v.commits.List() }
func (v *View) Commit(id string) (*dag.Commit, error)  { return v.commits.LoadCommit(id) }
func (v *View) Blob(id string) (*dag.Blob, error)      { return v.blobs.LoadBlob(id) }
func (v *View) BranchLog(name string) (string, error)  { return v.logs.Branch(name) }
func (v *View) GlobalLog() (string, error)             { return v.logs.Global() }

// ActiveBranch returns the name stored in ACTIVE.
func (v *View) ActiveBranch() (string, error) {
	data, err := os.ReadFile(filepath.Join(v.dir, "ACTIVE"))
	if err != nil {
		return "", errors.Wrap(err, "read ACTIVE")
	}
	return strings.TrimSpace(string(data)), nil
}
