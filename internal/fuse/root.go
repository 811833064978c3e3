package fuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// RootNode is the mountpoint directory.
type RootNode struct {
	fs.Inode
	src Source
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	add := func(name string, node fs.InodeEmbedder, mode uint32) {
		child := r.NewPersistentInode(ctx, node, fs.StableAttr{
			Mode: mode,
			Ino:  stableIno(name),
		})
		r.AddChild(name, child, true)
	}

	add("ACTIVE", &TextFile{path: "ACTIVE", content: r.activeBytes}, syscall.S_IFREG)
	add("log", &TextFile{path: "log", content: r.logBytes}, syscall.S_IFREG)
	add("global-log", &TextFile{path: "global-log", content: r.globalLogBytes}, syscall.S_IFREG)
	add("branches", &BranchesDir{src: r.src}, syscall.S_IFDIR)
	add("commits", &CommitsDir{src: r.src}, syscall.S_IFDIR)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

func (r *RootNode) activeBytes() ([]byte, error) {
	name, err := r.src.ActiveBranch()
	if err != nil {
		return nil, err
	}
	return []byte(name + "\n"), nil
}

func (r *RootNode) logBytes() ([]byte, error) {
	name, err := r.src.ActiveBranch()
	if err != nil {
		return nil, err
	}
	text, err := r.src.BranchLog(name)
	return []byte(text), err
}

func (r *RootNode) globalLogBytes() ([]byte, error) {
	text, err := r.src.GlobalLog()
	return []byte(text), err
}

// BranchesDir lists branches; each entry is the snapshot of its head commit.
type BranchesDir struct {
	fs.Inode
	src Source
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := d.src.Branches()
	if err != nil {
		return nil, syscall.EIO
	}
	return fs.NewListDirStream(dirEntries("branches/", names, syscall.S_IFDIR)), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, err := d.src.BranchHead(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.src.Commit(id)
	if err != nil {
		return nil, syscall.EIO
	}
	// The inode is keyed by commit so a moved branch is seen as a new directory.
	child := d.NewInode(ctx, &SnapshotDir{src: d.src, commit: c, path: "commits/" + id}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("commits/" + id),
	})
	return child, fs.OK
}

// CommitsDir lists every stored commit by ID.
type CommitsDir struct {
	fs.Inode
	src Source
}

var _ = (fs.NodeLookuper)((*CommitsDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitsDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitsDir)(nil))

func (d *CommitsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("commits")
	return fs.OK
}

func (d *CommitsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	ids, err := d.src.CommitIDs()
	if err != nil {
		return nil, syscall.EIO
	}
	return fs.NewListDirStream(dirEntries("commits/", ids, syscall.S_IFDIR)), fs.OK
}

func (d *CommitsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c, err := d.src.Commit(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	child := d.NewInode(ctx, &SnapshotDir{src: d.src, commit: c, path: "commits/" + name}, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("commits/" + name),
	})
	return child, fs.OK
}

// dirEntries builds directory entries for names under prefix.
func dirEntries(prefix string, names []string, mode uint32) []fuse.DirEntry {
	entries := make([]fuse.DirEntry, len(names))
	for i, name := range names {
		entries[i] = fuse.DirEntry{
			Name: name,
			Mode: mode,
			Ino:  stableIno(prefix + name),
		}
	}
	return entries
}
