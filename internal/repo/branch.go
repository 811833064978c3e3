package repo

import (
	"sort"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

var errNoSuchBranch = errs.New(errs.KindNotFound, "A branch with that name does not exist.")

// Branches returns all branch names, sorted.
func (r *Repository) Branches() []string {
	names := make([]string, 0, len(r.heads))
	for name := range r.heads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Branch creates a branch pointing at the current head. The new branch's
// log starts as a copy of the active branch's log. The active branch does
// not change.
func (r *Repository) Branch(name string) error {
	if !dag.ValidRefName(name) {
		return errs.ErrIncorrectOperands
	}
	if _, ok := r.heads[name]; ok {
		return errs.New(errs.KindAlreadyExists, "A branch with that name already exists.")
	}
	text, err := r.branchLog(r.active)
	if err != nil {
		return err
	}
	r.setHead(name, r.Head())
	r.replaceBranchLog(name, text)
	return nil
}

// RemoveBranch deletes the branch pointer and its log. Commits are kept.
func (r *Repository) RemoveBranch(name string) error {
	if _, ok := r.heads[name]; !ok {
		return errNoSuchBranch
	}
	if name == r.active {
		return errs.ErrCannotRemoveActive
	}
	r.dropHead(name)
	r.dropBranchLog(name)
	r.log.Debug().Str("branch", name).Msg("Removed branch")
	return nil
}

// Merge checks its operand and reports that merging is not supported.
func (r *Repository) Merge(name string) error {
	if _, ok := r.heads[name]; !ok {
		return errNoSuchBranch
	}
	if name == r.active {
		return errs.New(errs.KindAlreadyOnBranch, "Cannot merge a branch with itself.")
	}
	return errs.ErrNotImplemented
}
