package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// OSFileSystem implements FileSystem using the OS filesystem, rooted at the
// working directory supplied at invocation.
type OSFileSystem struct {
	root string
}

// NewOSFileSystem creates a new OS-based filesystem rooted at the given path
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

// Root returns the directory all relative paths resolve against.
func (osfs *OSFileSystem) Root() string {
	return osfs.root
}

func (osfs *OSFileSystem) resolve(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(osfs.root, filepath.FromSlash(name)), nil
}

// Open implements fs.FS
func (osfs *OSFileSystem) Open(name string) (fs.File, error) {
	fullPath, err := osfs.resolve("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// ReadFile implements ReadFS
func (osfs *OSFileSystem) ReadFile(name string) ([]byte, error) {
	fullPath, err := osfs.resolve("readfile", name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// Stat implements ReadFS
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	fullPath, err := osfs.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(fullPath)
}

// WriteFile implements WriteFS
func (osfs *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	fullPath, err := osfs.resolve("writefile", name)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, perm)
}

// MkdirAll implements WriteFS
func (osfs *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	fullPath, err := osfs.resolve("mkdirall", path)
	if err != nil {
		return err
	}
	return os.MkdirAll(fullPath, perm)
}

// Chmod implements WriteFS
func (osfs *OSFileSystem) Chmod(name string, mode fs.FileMode) error {
	fullPath, err := osfs.resolve("chmod", name)
	if err != nil {
		return err
	}
	return os.Chmod(fullPath, mode)
}

// Chtimes implements WriteFS
func (osfs *OSFileSystem) Chtimes(name string, atime, mtime time.Time) error {
	fullPath, err := osfs.resolve("chtimes", name)
	if err != nil {
		return err
	}
	return os.Chtimes(fullPath, atime, mtime)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
