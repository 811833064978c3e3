package dag

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/errs"
)

const (
	// IDLength is the length of a full object ID in hex characters.
	IDLength = 40
	// AbbrevLength is the prefix length recorded in the abbreviated-ID index.
	AbbrevLength = 7
)

// ErrDuplicateWrite is returned when different bytes are already stored
// under an object's ID.
var ErrDuplicateWrite = errs.New(errs.KindInternal, "object already exists with different content")

// ObjectStore manages content-addressed immutable objects on disk.
// Objects are named by the base32 CIDv1 (dag-json codec) of their SHA-1
// multihash; callers address them by the 40-character hex digest.
type ObjectStore struct {
	dir string
}

// NewObjectStore creates an ObjectStore at the given directory.
func NewObjectStore(dir string) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create objects dir")
	}
	return &ObjectStore{dir: dir}, nil
}

// ComputeID returns the hex SHA-1 digest of data, computed via multihash.
func ComputeID(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA1, -1)
	if err != nil {
		return "", errors.Wrap(err, "multihash")
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		return "", errors.Wrap(err, "decode multihash")
	}
	return hex.EncodeToString(dec.Digest), nil
}

// IDToCID converts a hex object ID into its CIDv1.
func IDToCID(id string) (gocid.Cid, error) {
	if len(id) != IDLength {
		return gocid.Undef, errors.Errorf("malformed object id %q", id)
	}
	digest, err := hex.DecodeString(id)
	if err != nil {
		return gocid.Undef, errors.Wrapf(err, "malformed object id %q", id)
	}
	mh, err := multihash.Encode(digest, multihash.SHA1)
	if err != nil {
		return gocid.Undef, errors.Wrap(err, "encode multihash")
	}
	return gocid.NewCidV1(gocid.DagJSON, mh), nil
}

// CIDToFilename returns the base32lower encoding of a CID for use as a filename.
func CIDToFilename(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// FilenameToID reverses CIDToFilename back to a hex object ID.
func FilenameToID(name string) (string, error) {
	_, cidBytes, err := multibase.Decode(name)
	if err != nil {
		return "", errors.Wrap(err, "decode object filename")
	}
	c, err := gocid.Cast(cidBytes)
	if err != nil {
		return "", errors.Wrap(err, "cast CID")
	}
	dec, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", errors.Wrap(err, "decode multihash")
	}
	return hex.EncodeToString(dec.Digest), nil
}

func (s *ObjectStore) path(id string) (string, error) {
	c, err := IDToCID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, CIDToFilename(c)), nil
}

// Put writes data to the object store, returning its ID.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(data []byte) (string, error) {
	id, err := ComputeID(data)
	if err != nil {
		return "", err
	}
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	existing, err := os.ReadFile(path)
	if err == nil {
		if !bytes.Equal(existing, data) {
			return "", ErrDuplicateWrite
		}
		return id, nil // already exists
	}
	if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "read object %s", id)
	}
	if err := SafeWrite(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "write object")
	}
	return id, nil
}

// Get reads an object by ID and verifies that its content still hashes to it.
func (s *ObjectStore) Get(id string) ([]byte, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, errs.Wrap(err, errs.KindNotFound, "malformed object id")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Newf(errs.KindNotFound, "object %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", id)
	}
	got, err := ComputeID(data)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, errs.Newf(errs.KindInternal, "object %s is corrupt (hashes to %s)", id, got)
	}
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *ObjectStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete object %s", id)
	}
	return nil
}

// List returns the IDs of all stored objects, sorted.
func (s *ObjectStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list objects")
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := FilenameToID(e.Name())
		if err != nil {
			continue // temp files and strays
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
