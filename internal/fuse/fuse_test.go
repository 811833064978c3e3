package fuse

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
)

type fakeSource struct {
	active  string
	heads   map[string]string
	logs    map[string]string
	global  string
	commits map[string]*dag.Commit
	blobs   map[string]*dag.Blob
}

var errMissing = errs.New(errs.KindNotFound, "missing")

func (s *fakeSource) ActiveBranch() (string, error) { return s.active, nil }
func (s *fakeSource) BranchLog(name string) (string, error) {
	return s.logs[name], nil
}
func (s *fakeSource) GlobalLog() (string, error) { return s.global, nil }

func (s *fakeSource) Branches() ([]string, error) {
	var names []string
	for name := range s.heads {
		names = append(names, name)
	}
	return names, nil
}

func (s *fakeSource) BranchHead(name string) (string, error) {
	id, ok := s.heads[name]
	if !ok {
		return "", errMissing
	}
	return id, nil
}

func (s *fakeSource) CommitIDs() ([]string, error) {
	var ids []string
	for id := range s.commits {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeSource) Commit(id string) (*dag.Commit, error) {
	c, ok := s.commits[id]
	if !ok {
		return nil, errMissing
	}
	return c, nil
}

func (s *fakeSource) Blob(id string) (*dag.Blob, error) {
	b, ok := s.blobs[id]
	if !ok {
		return nil, errMissing
	}
	return b, nil
}

func readAll(t *testing.T, r fs.NodeReader, size int) string {
	t.Helper()
	res, errno := r.Read(context.Background(), nil, make([]byte, size), 0)
	require.Equal(t, fs.OK, errno)
	data, status := res.Bytes(nil)
	require.True(t, status.Ok())
	return string(data)
}

func drain(t *testing.T, ds fs.DirStream) []string {
	t.Helper()
	var names []string
	for ds.HasNext() {
		e, errno := ds.Next()
		require.Equal(t, syscall.Errno(0), errno)
		names = append(names, e.Name)
	}
	return names
}

func TestReadAt(t *testing.T) {
	data := []byte("hello world")
	got, _ := readAt(data, make([]byte, 5), 6).Bytes(nil)
	assert.Equal(t, "world", string(got))

	got, _ = readAt(data, make([]byte, 100), 0).Bytes(nil)
	assert.Equal(t, "hello world", string(got))

	got, _ = readAt(data, make([]byte, 4), 50).Bytes(nil)
	assert.Empty(t, got)
}

func TestStableIno(t *testing.T) {
	assert.Equal(t, stableIno("commits/abc"), stableIno("commits/abc"))
	assert.NotEqual(t, stableIno("commits/abc"), stableIno("commits/abd"))
}

func TestRootTextFiles(t *testing.T) {
	src := &fakeSource{
		active: "dev",
		logs:   map[string]string{"dev": "===\ncommit x\n", "master": "other"},
		global: "everything\n",
	}
	root := &RootNode{src: src}

	active := &TextFile{path: "ACTIVE", content: root.activeBytes}
	assert.Equal(t, "dev\n", readAll(t, active, 64))

	var out fuse.AttrOut
	require.Equal(t, fs.OK, active.Getattr(context.Background(), nil, &out))
	assert.Equal(t, uint64(4), out.Size)
	assert.Equal(t, uint32(0444), out.Mode)

	log := &TextFile{path: "log", content: root.logBytes}
	assert.Equal(t, "===\ncommit x\n", readAll(t, log, 64))

	global := &TextFile{path: "global-log", content: root.globalLogBytes}
	assert.Equal(t, "everything\n", readAll(t, global, 64))

	_, _, errno := log.Open(context.Background(), syscall.O_WRONLY)
	assert.Equal(t, syscall.EROFS, errno)
}

func TestSnapshotDirAndBlobFile(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := dag.NewCommit("m", "master", "", map[string]string{"b.txt": "blob-b", "a.txt": "blob-a"}, ts)
	src := &fakeSource{
		blobs: map[string]*dag.Blob{
			"blob-a": dag.NewBlob("a.txt", []byte("contents of a")),
		},
	}

	dir := &SnapshotDir{src: src, commit: c, path: "commits/x"}
	ds, errno := dir.Readdir(context.Background())
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, []string{"a.txt", "b.txt"}, drain(t, ds))

	f := &BlobFile{src: src, blobID: "blob-a", mtime: ts}
	assert.Equal(t, "contents of a", readAll(t, f, 128))

	var out fuse.AttrOut
	require.Equal(t, fs.OK, f.Getattr(context.Background(), nil, &out))
	assert.Equal(t, uint64(len("contents of a")), out.Size)
	assert.Equal(t, uint64(ts.Unix()), out.Mtime)

	missing := &BlobFile{src: src, blobID: "blob-b"}
	_, errno = missing.Read(context.Background(), nil, make([]byte, 8), 0)
	assert.Equal(t, syscall.EIO, errno)
}

func TestCommitsDirReaddir(t *testing.T) {
	src := &fakeSource{commits: map[string]*dag.Commit{"c1": dag.InitialCommit("master")}}
	d := &CommitsDir{src: src}
	ds, errno := d.Readdir(context.Background())
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, []string{"c1"}, drain(t, ds))
}
