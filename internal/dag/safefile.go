package dag

import (
	"os"

	"github.com/google/renameio"
	"github.com/pkg/errors"
)

// SafeWrite writes data to path atomically: tempfile -> fsync -> rename.
// Readers observe either the old contents or the new, never a torn write.
func SafeWrite(path string, data []byte, perm os.FileMode) error {
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// SafePrepend atomically replaces path with data followed by the file's
// previous contents. A missing file is treated as empty.
func SafePrepend(path string, data []byte) error {
	old, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "read %s", path)
	}
	buf := make([]byte, 0, len(data)+len(old))
	buf = append(buf, data...)
	buf = append(buf, old...)
	return SafeWrite(path, buf, 0644)
}
