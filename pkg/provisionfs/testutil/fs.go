// Package testutil provides test helpers for provisionfs packages.
package testutil

import (
	"io/fs"
	"path"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

// TestFileSystem is a MemFileSystem with failure injection and write counts.
type TestFileSystem struct {
	*filesystem.MemFileSystem

	// FailWrites makes WriteFile fail for the listed paths.
	FailWrites map[string]error
	// FailMkdir makes MkdirAll fail for the listed paths.
	FailMkdir map[string]error
	// Writes counts successful WriteFile calls per path.
	Writes map[string]int
}

// NewTestFileSystem creates an empty test filesystem.
func NewTestFileSystem() *TestFileSystem {
	return NewTestFileSystemFromMap(make(fstest.MapFS))
}

// NewTestFileSystemFromMap creates a test filesystem from an existing map
func NewTestFileSystemFromMap(files fstest.MapFS) *TestFileSystem {
	return &TestFileSystem{
		MemFileSystem: filesystem.NewMemFileSystemFromMap(files),
		FailWrites:    make(map[string]error),
		FailMkdir:     make(map[string]error),
		Writes:        make(map[string]int),
	}
}

// WriteFile fails with the injected error for name, if any, and counts
// successful writes.
func (tfs *TestFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err, ok := tfs.FailWrites[name]; ok {
		return &fs.PathError{Op: "writefile", Path: name, Err: err}
	}
	if err := tfs.MemFileSystem.WriteFile(name, data, perm); err != nil {
		return err
	}
	tfs.Writes[name]++
	return nil
}

// MkdirAll fails with the injected error for p, if any.
func (tfs *TestFileSystem) MkdirAll(p string, perm fs.FileMode) error {
	if err, ok := tfs.FailMkdir[p]; ok {
		return &fs.PathError{Op: "mkdirall", Path: p, Err: err}
	}
	return tfs.MemFileSystem.MkdirAll(p, perm)
}

// TestHelper provides utilities for testing provisioning operations
type TestHelper struct {
	t  *testing.T
	fs *TestFileSystem
}

// NewTestHelper creates a new test helper with a fresh filesystem
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t, fs: NewTestFileSystem()}
}

// FileSystem returns the test filesystem
func (th *TestHelper) FileSystem() *TestFileSystem {
	return th.fs
}

// WriteFile is a helper that writes a file, creating parents, and fails the test on error
func (th *TestHelper) WriteFile(name, content string) {
	th.t.Helper()
	if dir := path.Dir(name); dir != "." {
		if err := th.fs.MkdirAll(dir, 0755); err != nil {
			th.t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	if err := th.fs.WriteFile(name, []byte(content), 0644); err != nil {
		th.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	th.fs.Writes[name] = 0
}

// ReadFile is a helper that reads a file and fails the test on error
func (th *TestHelper) ReadFile(name string) string {
	th.t.Helper()
	data, err := th.fs.ReadFile(name)
	if err != nil {
		th.t.Fatalf("Failed to read file %s: %v", name, err)
	}
	return string(data)
}

// FileExists checks if a file exists
func (th *TestHelper) FileExists(name string) bool {
	_, err := th.fs.Stat(name)
	return err == nil
}

// AssertFileContent checks that a file has the expected content
func (th *TestHelper) AssertFileContent(name, expected string) {
	th.t.Helper()
	if actual := th.ReadFile(name); actual != expected {
		th.t.Errorf("File %s content mismatch:\nExpected: %q\nActual: %q", name, expected, actual)
	}
}

// AssertNotWritten checks that no write reached the file since it was seeded
func (th *TestHelper) AssertNotWritten(name string) {
	th.t.Helper()
	if n := th.fs.Writes[name]; n != 0 {
		th.t.Errorf("Expected no writes to %s, got %d", name, n)
	}
}
