// Package fuse exposes a gitlet repository as a read-only filesystem.
//
// Layout:
//
//	ACTIVE                   name of the checked-out branch
//	log                      log of the checked-out branch
//	global-log               every commit, newest first
//	branches/<name>/<file>   files of each branch's head commit
//	commits/<id>/<file>      files of any commit
package fuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// Source is the repository data the filesystem reads. Every call should
// reflect the repository's current on-disk state.
type Source interface {
	ActiveBranch() (string, error)
	Branches() ([]string, error)
	BranchHead(name string) (string, error)
	BranchLog(name string) (string, error)
	GlobalLog() (string, error)
	CommitIDs() ([]string, error)
	Commit(id string) (*dag.Commit, error)
	Blob(id string) (*dag.Blob, error)
}

// MountFS mounts src read-only at mountpoint.
// Returns the server (call server.Wait() to block, server.Unmount() to stop).
func MountFS(mountpoint string, src Source, debug bool) (*gofuse.Server, error) {
	root := &RootNode{src: src}

	opts := &fs.Options{
		MountOptions: gofuse.MountOptions{
			FsName:        "gitlet",
			Name:          "gitlet",
			DisableXAttrs: true,
			Debug:         debug,
			Options:       []string{"ro"},
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
