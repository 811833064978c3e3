package fuse

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// SnapshotDir shows the files tracked by one commit.
type SnapshotDir struct {
	fs.Inode
	src    Source
	commit *dag.Commit
	path   string
}

var _ = (fs.NodeLookuper)((*SnapshotDir)(nil))
var _ = (fs.NodeReaddirer)((*SnapshotDir)(nil))
var _ = (fs.NodeGetattrer)((*SnapshotDir)(nil))

func (d *SnapshotDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno(d.path)
	out.SetTimes(nil, &d.commit.Timestamp, nil)
	return fs.OK
}

func (d *SnapshotDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	return fs.NewListDirStream(dirEntries(d.path+"/", d.commit.Files(), syscall.S_IFREG)), fs.OK
}

func (d *SnapshotDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, ok := d.commit.Tracks(name)
	if !ok {
		return nil, syscall.ENOENT
	}
	f := &BlobFile{src: d.src, blobID: id, mtime: d.commit.Timestamp}
	child := d.NewInode(ctx, f, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno("blobs/" + id),
	})
	return child, fs.OK
}

// BlobFile is the immutable contents of one stored blob.
type BlobFile struct {
	fs.Inode
	src    Source
	blobID string
	mtime  time.Time
}

var _ = (fs.NodeGetattrer)((*BlobFile)(nil))
var _ = (fs.NodeOpener)((*BlobFile)(nil))
var _ = (fs.NodeReader)((*BlobFile)(nil))

func (f *BlobFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	b, err := f.src.Blob(f.blobID)
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(b.Contents))
	out.Ino = stableIno("blobs/" + f.blobID)
	out.SetTimes(nil, &f.mtime, nil)
	return fs.OK
}

func (f *BlobFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (f *BlobFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	b, err := f.src.Blob(f.blobID)
	if err != nil {
		return nil, syscall.EIO
	}
	return readAt(b.Contents, dest, off), fs.OK
}
