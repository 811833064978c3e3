package repo

import (
	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

// Add stages the working-tree version of name. Adding a file whose contents
// match the head commit's version unstages it instead.
func (r *Repository) Add(name string) error {
	data, err := r.Worktree.Read(name)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	id, err := dag.NewBlob(name, data).ID()
	if err != nil {
		return err
	}

	if tracked, ok := head.Tracks(name); ok && tracked == id {
		r.stage.Unstage(name)
		r.stage.Unremove(name)
		r.log.Debug().Str("file", name).Msg("Unchanged from head, unstaged")
		return nil
	}

	if _, err := r.Staged.StoreBlob(name, data); err != nil {
		return err
	}
	r.stage.Add(name, id)
	r.log.Debug().Str("file", name).Str("blob", id).Msg("Staged file")
	return nil
}

// Remove unstages name and, if the head commit tracks it, queues it for
// removal and deletes it from the working tree.
func (r *Repository) Remove(name string) error {
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	_, staged := r.stage.Staged(name)
	_, tracked := head.Tracks(name)
	if !staged && !tracked {
		return errs.ErrNothingToRemove
	}

	if staged {
		r.stage.Unstage(name)
		r.log.Debug().Str("file", name).Msg("Unstaged file")
	}
	if tracked {
		r.stage.MarkRemoved(name)
		if err := r.Worktree.Remove(name); err != nil {
			return err
		}
		r.log.Debug().Str("file", name).Msg("Queued file for removal")
	}
	return nil
}

// Commit snapshots the head commit's files with the staged changes applied,
// advances the active branch to the new commit and clears the stage.
func (r *Repository) Commit(message string) (string, error) {
	if r.stage.Empty() {
		return "", errs.ErrNothingToCommit
	}
	if message == "" {
		return "", errs.ErrMissingMessage
	}

	parent := r.Head()
	head, err := r.Commits.LoadCommit(parent)
	if err != nil {
		return "", err
	}

	blobs := head.CopyBlobs()
	for _, name := range r.stage.AddedNames() {
		staged, err := r.Staged.LoadBlob(r.stage.Added[name])
		if err != nil {
			return "", err
		}
		id, err := r.Blobs.StoreBlob(staged.Name, staged.Contents)
		if err != nil {
			return "", err
		}
		blobs[name] = id
	}
	for name := range r.stage.Removed {
		delete(blobs, name)
	}

	c := dag.NewCommit(message, r.active, parent, blobs, r.now())
	id, err := r.Commits.StoreCommit(c)
	if err != nil {
		return "", err
	}

	r.setHead(r.active, id)
	r.stage.Clear()
	r.recordCommit(id, c)
	r.log.Info().Str("branch", r.active).Str("commit", id).Int("files", len(blobs)).Msg("Created commit")
	return id, nil
}
