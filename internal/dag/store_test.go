package dag

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/systemshift/gitlet/internal/errs"
)

func openTestStore(t *testing.T) (*ObjectStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "objects")
	s, err := NewObjectStore(dir)
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	return s, dir
}

func TestComputeID_KnownVector(t *testing.T) {
	// sha1("abc")
	got, err := ComputeID([]byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("got %s", got)
	}
}

func TestIDToCID_RoundTrip(t *testing.T) {
	id, _ := ComputeID([]byte("round trip"))
	c, err := IDToCID(id)
	if err != nil {
		t.Fatal(err)
	}
	name := CIDToFilename(c)
	if !strings.HasPrefix(name, "b") {
		t.Errorf("filename %s is not base32 multibase", name)
	}
	back, err := FilenameToID(name)
	if err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Errorf("got %s, want %s", back, id)
	}

	if _, err := IDToCID("abc"); err == nil {
		t.Error("expected error for short id")
	}
}

func TestStoreBlob_Dedup(t *testing.T) {
	s, dir := openTestStore(t)

	id1, err := s.StoreBlob("a.txt", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.StoreBlob("a.txt", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("same content got different ids: %s vs %s", id1, id2)
	}
	if len(id1) != IDLength {
		t.Errorf("id length = %d", len(id1))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 object file, got %d", len(entries))
	}

	// The filename is part of the blob's identity.
	id3, _ := s.StoreBlob("b.txt", []byte("hello"))
	if id3 == id1 {
		t.Error("different filenames should give different ids")
	}

	b, err := s.LoadBlob(id1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "a.txt" || string(b.Contents) != "hello" {
		t.Errorf("got %+v", b)
	}
}

func TestStoreBlob_Empty(t *testing.T) {
	s, _ := openTestStore(t)
	id, err := s.StoreBlob("empty", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.LoadBlob(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Contents) != 0 {
		t.Errorf("contents = %q", b.Contents)
	}
}

func TestStoreBlob_RejectsInvalidUTF8Name(t *testing.T) {
	s, dir := openTestStore(t)
	if _, err := s.StoreBlob("a\xff.txt", []byte("hi")); err == nil {
		t.Fatal("expected error for non-UTF-8 name")
	}
	if _, err := NewBlob("a\xfe.txt", []byte("hi")).ID(); err == nil {
		t.Fatal("expected error hashing non-UTF-8 name")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("store not empty after rejected write: %d entries", len(entries))
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _ := openTestStore(t)
	id, _ := ComputeID([]byte("never stored"))
	_, err := s.Get(id)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if s.Has(id) {
		t.Error("Has reported a missing object")
	}
}

func TestGet_DetectsCorruption(t *testing.T) {
	s, dir := openTestStore(t)
	id, _ := s.StoreBlob("a.txt", []byte("original"))

	c, _ := IDToCID(id)
	path := filepath.Join(dir, CIDToFilename(c))
	if err := os.WriteFile(path, []byte(`{"contents":"","name":"evil"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadBlob(id); err == nil {
		t.Fatal("expected corruption error")
	}
}

func TestPut_DuplicateWrite(t *testing.T) {
	s, dir := openTestStore(t)
	data := []byte("payload")
	id, _ := s.Put(data)

	c, _ := IDToCID(id)
	if err := os.WriteFile(filepath.Join(dir, CIDToFilename(c)), []byte("other"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(data); err != ErrDuplicateWrite {
		t.Fatalf("expected ErrDuplicateWrite, got %v", err)
	}
}

func TestStoreCommit_SelfVerifying(t *testing.T) {
	s, _ := openTestStore(t)
	ts := time.Date(2024, 3, 4, 5, 6, 7, 891, time.FixedZone("X", 3600))
	c := NewCommit("msg", "master", "", map[string]string{"a.txt": strings.Repeat("1", IDLength)}, ts)

	id, err := s.StoreCommit(c)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := c.ID()
	if id != want {
		t.Fatalf("StoreCommit id %s != ID() %s", id, want)
	}

	got, err := s.LoadCommit(id)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Timestamp.Equal(ts.Truncate(time.Second)) {
		t.Errorf("timestamp = %v", got.Timestamp)
	}
	if got.Message != "msg" || got.Branch != "master" || got.Blobs["a.txt"] != c.Blobs["a.txt"] {
		t.Errorf("got %+v", got)
	}
	again, _ := got.ID()
	if again != id {
		t.Errorf("reloaded commit hashes to %s, want %s", again, id)
	}
}

func TestInitialCommit_Stable(t *testing.T) {
	a, _ := InitialCommit("master").ID()
	b, _ := InitialCommit("master").ID()
	if a != b {
		t.Fatal("initial commit id is not stable")
	}
	c := InitialCommit("master")
	if c.Timestamp.Unix() != 0 || c.Parent != "" || len(c.Blobs) != 0 {
		t.Errorf("unexpected initial commit %+v", c)
	}
}

func TestList_SkipsStrays(t *testing.T) {
	s, dir := openTestStore(t)
	a, _ := s.Put([]byte("a"))
	b, _ := s.Put([]byte("b"))
	os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0644)

	ids, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %v", ids)
	}
	if !(ids[0] < ids[1]) || (ids[0] != a && ids[0] != b) {
		t.Errorf("unexpected order %v", ids)
	}

	if err := s.Delete(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(a); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if s.Has(a) {
		t.Error("object still present after delete")
	}
}
