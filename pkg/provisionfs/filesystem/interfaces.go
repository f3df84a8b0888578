package filesystem

import (
	"io/fs"
	"time"
)

// ReadFS is the read side of the filesystem boundary.
type ReadFS interface {
	fs.FS
	ReadFile(name string) ([]byte, error)
	Stat(name string) (fs.FileInfo, error)
}

// WriteFS defines the write operations the provisioning engine performs.
// Every write is a single whole-file overwrite.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error
}

// FileSystem combines read and write operations.
type FileSystem interface {
	ReadFS
	WriteFS
}

// Exists reports whether name exists. Errors other than fs.ErrNotExist are
// returned so callers never mistake an unreadable path for a missing one.
func Exists(fsys ReadFS, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if isNotExist(err) {
		return false, nil
	}
	return false, err
}
