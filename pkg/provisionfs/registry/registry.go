// Package registry holds the canonical files and patch specs for the
// deployment target. A Registry is immutable once built; callers get a fresh
// one from Default and pass it explicitly to the pipeline.
package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

//go:embed canonical
var canonicalFS embed.FS

const canonicalRoot = "canonical"

// Registry is a fixed mapping of canonical files plus an ordered list of patches.
type Registry struct {
	files   []core.CanonicalFile
	index   map[string]int
	patches []core.PatchSpec
}

// New builds a registry from explicit data. Files and patches keep their order.
func New(files []core.CanonicalFile, patches []core.PatchSpec) (*Registry, error) {
	r := &Registry{
		files:   append([]core.CanonicalFile(nil), files...),
		index:   make(map[string]int, len(files)),
		patches: append([]core.PatchSpec(nil), patches...),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Files returns a copy of the canonical files in restore order.
func (r *Registry) Files() []core.CanonicalFile {
	return append([]core.CanonicalFile(nil), r.files...)
}

// Patches returns a copy of the patch specs in apply order.
func (r *Registry) Patches() []core.PatchSpec {
	return append([]core.PatchSpec(nil), r.patches...)
}

// Lookup returns the canonical file registered for path.
func (r *Registry) Lookup(p string) (core.CanonicalFile, bool) {
	i, ok := r.index[p]
	if !ok {
		return core.CanonicalFile{}, false
	}
	return r.files[i], true
}

// Validate checks file paths are unique and valid, and every patch is well formed.
func (r *Registry) Validate() error {
	clear(r.index)
	for i, f := range r.files {
		if !fs.ValidPath(f.Path) || f.Path == "." {
			return fmt.Errorf("canonical file %d: invalid path %q", i, f.Path)
		}
		if _, dup := r.index[f.Path]; dup {
			return fmt.Errorf("canonical file %q registered twice", f.Path)
		}
		r.index[f.Path] = i
	}
	ids := make(map[core.OperationID]bool, len(r.patches))
	for _, p := range r.patches {
		if err := p.Validate(); err != nil {
			return err
		}
		if p.ID != "" {
			if ids[p.ID] {
				return fmt.Errorf("patch id %q registered twice", p.ID)
			}
			ids[p.ID] = true
		}
	}
	return nil
}

// loadCanonical reads the embedded content for each relative path, in order.
func loadCanonical(paths ...string) ([]core.CanonicalFile, error) {
	files := make([]core.CanonicalFile, 0, len(paths))
	for _, p := range paths {
		data, err := canonicalFS.ReadFile(path.Join(canonicalRoot, p))
		if err != nil {
			return nil, fmt.Errorf("embedded content for %s: %w", p, err)
		}
		files = append(files, core.CanonicalFile{Path: p, Content: string(data)})
	}
	return files, nil
}
