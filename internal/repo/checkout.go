package repo

import (
	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

var errFileNotInCommit = errs.New(errs.KindNotFound, "File does not exist in that commit.")

// checkUntracked fails if any of names exists in the working tree without
// being tracked by the head commit, since writing target's version would
// destroy it.
func (r *Repository) checkUntracked(head *dag.Commit, names []string) error {
	for _, name := range names {
		if _, tracked := head.Tracks(name); tracked {
			continue
		}
		if r.Worktree.Exists(name) {
			r.log.Debug().Str("file", name).Msg("Untracked file in the way")
			return errs.ErrUntrackedConflict
		}
	}
	return nil
}

// CheckoutFile restores name from the head commit.
func (r *Repository) CheckoutFile(name string) error {
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	return r.checkoutFile(head, head, name)
}

// CheckoutFileAt restores name from the commit op resolves to.
func (r *Repository) CheckoutFileAt(op, name string) error {
	id, err := r.ResolveCommit(op)
	if err != nil {
		return err
	}
	target, err := r.Commits.LoadCommit(id)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	return r.checkoutFile(head, target, name)
}

func (r *Repository) checkoutFile(head, target *dag.Commit, name string) error {
	id, ok := target.Tracks(name)
	if !ok {
		return errFileNotInCommit
	}
	if err := r.checkUntracked(head, []string{name}); err != nil {
		return err
	}
	blob, err := r.Blobs.LoadBlob(id)
	if err != nil {
		return err
	}
	if err := r.Worktree.Write(name, blob.Contents); err != nil {
		return err
	}
	r.log.Debug().Str("file", name).Str("blob", id).Msg("Checked out file")
	return nil
}

// CheckoutBranch makes name the active branch and replaces the working
// tree with its head commit's files.
func (r *Repository) CheckoutBranch(name string) error {
	id, ok := r.heads[name]
	if !ok {
		return errs.New(errs.KindNotFound, "No such branch exists.")
	}
	if name == r.active {
		return errs.ErrAlreadyOnBranch
	}
	if err := r.replaceSnapshot(id); err != nil {
		return err
	}
	r.active = name
	r.stage.Clear()
	r.log.Info().Str("branch", name).Msg("Switched branch")
	return nil
}

// Reset moves the active branch to the commit op resolves to and replaces
// the working tree with that commit's files.
func (r *Repository) Reset(op string) error {
	id, err := r.ResolveCommit(op)
	if err != nil {
		return err
	}
	if err := r.replaceSnapshot(id); err != nil {
		return err
	}
	r.setHead(r.active, id)
	r.stage.Clear()
	return r.regenerateLog(r.active, id)
}

// replaceSnapshot writes every file of commit id into the working tree and
// deletes files the head tracks that id does not. Nothing is touched if an
// untracked file would be overwritten.
func (r *Repository) replaceSnapshot(id string) error {
	target, err := r.Commits.LoadCommit(id)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head, target.Files()); err != nil {
		return err
	}

	blobs := make(map[string]*dag.Blob, len(target.Blobs))
	for _, name := range target.Files() {
		b, err := r.Blobs.LoadBlob(target.Blobs[name])
		if err != nil {
			return err
		}
		blobs[name] = b
	}
	for _, name := range target.Files() {
		if err := r.Worktree.Write(name, blobs[name].Contents); err != nil {
			return err
		}
	}
	for _, name := range head.Files() {
		if _, keep := target.Tracks(name); keep {
			continue
		}
		if err := r.Worktree.Remove(name); err != nil {
			return err
		}
	}
	r.log.Debug().Str("commit", id).Int("files", len(blobs)).Msg("Replaced working tree")
	return nil
}
