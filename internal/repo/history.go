package repo

import "strings"

// Log returns the active branch's log, newest commit first.
func (r *Repository) Log() (string, error) {
	return r.branchLog(r.active)
}

// GlobalLog returns the log of every commit ever made, newest first.
func (r *Repository) GlobalLog() (string, error) {
	stored, err := r.Logs.Global()
	if err != nil {
		return "", err
	}
	return r.globalText + stored, nil
}

// Find returns the IDs of all commits with exactly the given message.
func (r *Repository) Find(message string) ([]string, error) {
	return r.index.Find(message)
}

// ResolveCommit expands a possibly abbreviated commit ID.
func (r *Repository) ResolveCommit(op string) (string, error) {
	return r.index.Resolve(op)
}

// regenerateLog rebuilds branch's log from the first-parent history of id.
func (r *Repository) regenerateLog(branch, id string) error {
	entries, err := r.Graph.History(id)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Format(r.loc))
	}
	r.replaceBranchLog(branch, b.String())
	return nil
}
