package registry_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	files := reg.Files()
	require.Len(t, files, 6)
	assert.Equal(t, "includes/classes/cache/builder/BuildCache.interface.php", files[0].Path,
		"the interface must be restored before the classes implementing it")
	assert.Equal(t, "includes/classes/cache/builder/VarsBuildCache.class.php", files[len(files)-1].Path)

	for _, f := range files {
		assert.True(t, strings.HasPrefix(f.Content, "<?php"), "%s should start with a php open tag", f.Path)
	}

	patches := reg.Patches()
	require.Len(t, patches, 3)
	for _, p := range patches {
		assert.NoError(t, p.Validate(), p.ID)
		assert.NotEmpty(t, p.ID)
	}
	assert.Equal(t, registry.GeneralFunctionsPath, patches[0].Path)
	assert.Equal(t, registry.CacheClassPath, patches[2].Path)
}

func TestDefaultIsFreshEachCall(t *testing.T) {
	a, err := registry.Default()
	require.NoError(t, err)
	b, err := registry.Default()
	require.NoError(t, err)

	files := a.Files()
	files[0].Content = "mutated"
	patches := a.Patches()
	patches[0].Target = "mutated"

	assert.NotEqual(t, "mutated", a.Files()[0].Content, "Files must return a copy")
	assert.NotEqual(t, "mutated", a.Patches()[0].Target, "Patches must return a copy")
	assert.Equal(t, a.Files(), b.Files())
}

func TestLookup(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	f, ok := reg.Lookup("includes/classes/cache/resource/CacheFile.class.php")
	require.True(t, ok)
	assert.Contains(t, f.Content, "CacheFile")

	_, ok = reg.Lookup("does/not/exist.php")
	assert.False(t, ok)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		files   []core.CanonicalFile
		patches []core.PatchSpec
	}{
		{"duplicate file", []core.CanonicalFile{{Path: "a"}, {Path: "a"}}, nil},
		{"absolute path", []core.CanonicalFile{{Path: "/etc/passwd"}}, nil},
		{"escaping path", []core.CanonicalFile{{Path: "../a"}}, nil},
		{"invalid patch", nil, []core.PatchSpec{{Path: "a", Target: "x", Replacement: "x"}}},
		{"duplicate patch id", nil, []core.PatchSpec{
			{ID: "p", Path: "a", Target: "x", Replacement: "y"},
			{ID: "p", Path: "b", Target: "x", Replacement: "y"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.New(tt.files, tt.patches)
			assert.Error(t, err)
		})
	}
}

func TestPortMapping(t *testing.T) {
	assert.Equal(t, registry.DefaultPortMapping, registry.PortMapping(registry.DefaultHostPort))
	assert.Equal(t, "9000:80", registry.PortMapping(9000))
}
