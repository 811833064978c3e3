package dag

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/systemshift/gitlet/internal/errs"
)

// Blob is the immutable content of one tracked file at a point in time.
// Its ID covers both the filename and the contents.
type Blob struct {
	Name     string `json:"name"`
	Contents []byte `json:"contents"`
}

// NewBlob builds a blob for name. A nil contents slice is stored as empty.
func NewBlob(name string, contents []byte) *Blob {
	if contents == nil {
		contents = []byte{}
	}
	return &Blob{Name: name, Contents: contents}
}

// Encode returns the canonical on-disk form of b. Names that are not valid
// UTF-8 are rejected since JSON would replace the bad bytes.
func (b *Blob) Encode() ([]byte, error) {
	if !utf8.ValidString(b.Name) {
		return nil, errs.Newf(errs.KindInternal, "blob name %q is not valid UTF-8", b.Name)
	}
	return CanonicalJSON(b)
}

// ID returns the content hash of b.
func (b *Blob) ID() (string, error) {
	data, err := b.Encode()
	if err != nil {
		return "", errors.Wrap(err, "serialize blob")
	}
	return ComputeID(data)
}

// StoreBlob persists a blob for (name, contents) and returns its ID.
// Storing the same pair twice writes one object.
func (s *ObjectStore) StoreBlob(name string, contents []byte) (string, error) {
	data, err := NewBlob(name, contents).Encode()
	if err != nil {
		return "", errors.Wrap(err, "serialize blob")
	}
	return s.Put(data)
}

// LoadBlob reads a blob by ID and checks that it re-hashes to the same ID.
func (s *ObjectStore) LoadBlob(id string) (*Blob, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(err, "unmarshal blob")
	}
	b = *NewBlob(b.Name, b.Contents)
	got, err := b.ID()
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, errs.Newf(errs.KindInternal, "blob %s does not verify (got %s)", id, got)
	}
	return &b, nil
}
