package provisionfs

import (
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/testutil"
)

func baseFS() *testutil.TestFileSystem {
	return testutil.NewTestFileSystemFromMap(fstest.MapFS{
		"includes":            &fstest.MapFile{Mode: fs.ModeDir | 0755},
		"includes/config.php": &fstest.MapFile{Data: []byte("<?php"), Mode: 0644},
	})
}

func TestDryRunFS_ReadFallsThrough(t *testing.T) {
	dryRunFS := NewDryRunFS(baseFS())

	content, err := dryRunFS.ReadFile("includes/config.php")
	require.NoError(t, err)
	assert.Equal(t, "<?php", string(content))

	_, err = dryRunFS.Stat("missing.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDryRunFS_WriteFile(t *testing.T) {
	base := baseFS()
	dryRunFS := NewDryRunFS(base)

	require.NoError(t, dryRunFS.WriteFile("includes/config.php", []byte("patched"), 0644))

	content, err := dryRunFS.ReadFile("includes/config.php")
	require.NoError(t, err)
	assert.Equal(t, "patched", string(content))
	assert.Equal(t, "<?php", string(base.MapFS["includes/config.php"].Data), "base must be untouched")
	assert.Equal(t, 0, base.Writes["includes/config.php"])

	err = dryRunFS.WriteFile("nowhere/file.txt", nil, 0644)
	assert.ErrorIs(t, err, fs.ErrNotExist, "parent must exist")
}

func TestDryRunFS_MkdirAll(t *testing.T) {
	base := baseFS()
	dryRunFS := NewDryRunFS(base)

	require.NoError(t, dryRunFS.MkdirAll("includes/classes/cache", 0755))
	fi, err := dryRunFS.Stat("includes/classes/cache")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.NotContains(t, base.MapFS, "includes/classes")

	require.NoError(t, dryRunFS.WriteFile("includes/classes/cache/x.php", []byte("x"), 0644))

	err = dryRunFS.MkdirAll("includes/config.php/sub", 0755)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestDryRunFS_MetadataCopiesUp(t *testing.T) {
	base := baseFS()
	dryRunFS := NewDryRunFS(base)

	require.NoError(t, dryRunFS.Chmod("includes/config.php", 0777))
	fi, err := dryRunFS.Stat("includes/config.php")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0777), fi.Mode().Perm())
	assert.Equal(t, fs.FileMode(0644), base.MapFS["includes/config.php"].Mode.Perm())

	content, err := dryRunFS.ReadFile("includes/config.php")
	require.NoError(t, err)
	assert.Equal(t, "<?php", string(content), "content survives the copy-up")

	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, dryRunFS.Chtimes("includes/config.php", mtime, mtime))
	fi, err = dryRunFS.Stat("includes/config.php")
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(mtime))

	assert.ErrorIs(t, dryRunFS.Chmod("missing", 0777), fs.ErrNotExist)
}

func TestDryRunFS_Changes(t *testing.T) {
	dryRunFS := NewDryRunFS(baseFS())

	require.NoError(t, dryRunFS.MkdirAll("cache", 0755))
	require.NoError(t, dryRunFS.WriteFile("includes/ENABLE_INSTALL_TOOL", nil, 0644))
	require.NoError(t, dryRunFS.Chmod("includes/config.php", 0777))

	assert.Equal(t, []string{"cache", "includes/ENABLE_INSTALL_TOOL", "includes/config.php"}, dryRunFS.Changes())
}
