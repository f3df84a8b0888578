package provisionfs

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

// DryRunFS overlays an in-memory layer on a read-only base. Reads see the
// overlay first and fall through to the base; every mutation stays in memory,
// copying a base file up first when its metadata changes.
type DryRunFS struct {
	base    filesystem.ReadFS
	mem     *filesystem.MemFileSystem
	changed map[string]bool
}

// NewDryRunFS creates a DryRunFS over base.
func NewDryRunFS(base filesystem.ReadFS) *DryRunFS {
	return &DryRunFS{
		base:    base,
		mem:     filesystem.NewMemFileSystem(),
		changed: make(map[string]bool),
	}
}

// Open opens the named file for reading.
func (d *DryRunFS) Open(name string) (fs.File, error) {
	if d.inMemory(name) {
		return d.mem.Open(name)
	}
	return d.base.Open(name)
}

// Stat returns a FileInfo describing the named file.
func (d *DryRunFS) Stat(name string) (fs.FileInfo, error) {
	if info, err := d.mem.Stat(name); err == nil {
		return info, nil
	}
	return d.base.Stat(name)
}

// ReadFile reads the file named by filename and returns the contents.
func (d *DryRunFS) ReadFile(name string) ([]byte, error) {
	if d.inMemory(name) {
		return d.mem.ReadFile(name)
	}
	return d.base.ReadFile(name)
}

// WriteFile records a write. As with os.WriteFile the parent must exist.
func (d *DryRunFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	if dir := path.Dir(name); dir != "." {
		info, err := d.Stat(dir)
		if err != nil || !info.IsDir() {
			return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrNotExist}
		}
		if err := d.mem.MkdirAll(dir, info.Mode().Perm()); err != nil {
			return err
		}
	}
	if err := d.mem.WriteFile(name, data, perm); err != nil {
		return err
	}
	d.changed[name] = true
	return nil
}

// MkdirAll records the creation of p and any missing parents.
func (d *DryRunFS) MkdirAll(p string, perm fs.FileMode) error {
	if !fs.ValidPath(p) {
		return &fs.PathError{Op: "mkdirall", Path: p, Err: fs.ErrInvalid}
	}
	var created []string
	for dir := p; dir != "."; dir = path.Dir(dir) {
		info, err := d.Stat(dir)
		if err == nil && !info.IsDir() {
			return &fs.PathError{Op: "mkdirall", Path: dir, Err: fs.ErrExist}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		created = append(created, dir)
	}
	if err := d.mem.MkdirAll(p, perm); err != nil {
		return err
	}
	for _, dir := range created {
		d.changed[dir] = true
	}
	return nil
}

// Chmod records a mode change.
func (d *DryRunFS) Chmod(name string, mode fs.FileMode) error {
	if err := d.copyUp("chmod", name); err != nil {
		return err
	}
	d.changed[name] = true
	return d.mem.Chmod(name, mode)
}

// Chtimes records a timestamp change.
func (d *DryRunFS) Chtimes(name string, atime, mtime time.Time) error {
	if err := d.copyUp("chtimes", name); err != nil {
		return err
	}
	d.changed[name] = true
	return d.mem.Chtimes(name, atime, mtime)
}

// Changes lists every path the run would have modified, sorted.
func (d *DryRunFS) Changes() []string {
	out := make([]string, 0, len(d.changed))
	for p := range d.changed {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (d *DryRunFS) inMemory(name string) bool {
	_, err := d.mem.Stat(name)
	return err == nil
}

// copyUp brings a base-only entry into memory so its metadata can change.
func (d *DryRunFS) copyUp(op, name string) error {
	if d.inMemory(name) {
		return nil
	}
	info, err := d.base.Stat(name)
	if err != nil {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	if info.IsDir() {
		return d.mem.MkdirAll(name, info.Mode().Perm())
	}
	data, err := d.base.ReadFile(name)
	if err != nil {
		return err
	}
	if dir := path.Dir(name); dir != "." {
		if err := d.mem.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := d.mem.WriteFile(name, data, info.Mode().Perm()); err != nil {
		return err
	}
	return d.mem.Chtimes(name, info.ModTime(), info.ModTime())
}
