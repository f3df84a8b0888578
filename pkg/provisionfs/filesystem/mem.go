package filesystem

import (
	"io/fs"
	"path"
	"testing/fstest"
	"time"
)

// MemFileSystem is an in-memory FileSystem backed by fstest.MapFS. Paths use
// fs.ValidPath form and writes follow os semantics: the parent of a file must
// already exist.
type MemFileSystem struct {
	fstest.MapFS
}

// NewMemFileSystem creates an empty in-memory filesystem.
func NewMemFileSystem() *MemFileSystem {
	return NewMemFileSystemFromMap(make(fstest.MapFS))
}

// NewMemFileSystemFromMap wraps an existing map. The map is used in place.
func NewMemFileSystemFromMap(files fstest.MapFS) *MemFileSystem {
	return &MemFileSystem{MapFS: files}
}

// WriteFile stores a copy of data at name.
func (m *MemFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	if dir := path.Dir(name); dir != "." {
		if info, err := m.Stat(dir); err != nil || !info.IsDir() {
			return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrNotExist}
		}
	}
	if existing, ok := m.MapFS[name]; ok && existing.Mode.IsDir() {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrExist}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.MapFS[name] = &fstest.MapFile{
		Data:    buf,
		Mode:    perm.Perm(),
		ModTime: time.Now(),
	}
	return nil
}

// MkdirAll creates p and any missing parents.
func (m *MemFileSystem) MkdirAll(p string, perm fs.FileMode) error {
	if !fs.ValidPath(p) {
		return &fs.PathError{Op: "mkdirall", Path: p, Err: fs.ErrInvalid}
	}
	for dir := p; dir != "."; dir = path.Dir(dir) {
		if existing, ok := m.MapFS[dir]; ok {
			if !existing.Mode.IsDir() {
				return &fs.PathError{Op: "mkdirall", Path: dir, Err: fs.ErrExist}
			}
			continue
		}
		m.MapFS[dir] = &fstest.MapFile{Mode: perm.Perm() | fs.ModeDir}
	}
	return nil
}

// Chmod changes the permission bits of name.
func (m *MemFileSystem) Chmod(name string, mode fs.FileMode) error {
	file, ok := m.MapFS[name]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: name, Err: fs.ErrNotExist}
	}
	file.Mode = (file.Mode & fs.ModeType) | mode.Perm()
	return nil
}

// Chtimes sets the modification time of name. MapFS keeps no access time.
func (m *MemFileSystem) Chtimes(name string, _, mtime time.Time) error {
	file, ok := m.MapFS[name]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: name, Err: fs.ErrNotExist}
	}
	file.ModTime = mtime
	return nil
}

var _ FileSystem = (*MemFileSystem)(nil)
