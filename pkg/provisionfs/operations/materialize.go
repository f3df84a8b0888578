package operations

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

const (
	defaultFileMode = 0644
	defaultDirMode  = 0755
)

// MaterializeOperation ensures a file exists, writing canonical content
// only when the path is absent. An existing file is authoritative,
// whatever its content.
type MaterializeOperation struct {
	*BaseOperation
	content string
}

// NewMaterializeOperation creates an operation restoring file from canonical content.
func NewMaterializeOperation(id core.OperationID, file core.CanonicalFile) *MaterializeOperation {
	op := &MaterializeOperation{
		BaseOperation: NewBaseOperation(id, "materialize", file.Path),
		content:       strings.TrimRightFunc(file.Content, unicode.IsSpace),
	}
	op.setDetail("bytes", len(op.content))
	return op
}

// Content returns the bytes that will be written, already right-trimmed.
func (op *MaterializeOperation) Content() string {
	return op.content
}

// Execute writes the canonical content if the path does not exist.
func (op *MaterializeOperation) Execute(ctx context.Context, fsys filesystem.FileSystem) core.OperationResult {
	exists, err := filesystem.Exists(fsys, op.Path())
	if err != nil {
		return op.failure("stat file", err)
	}
	if exists {
		return op.result(core.KindAlreadyPresent, "file already exists")
	}

	if dir := path.Dir(op.Path()); dir != "." && dir != "/" {
		if err := fsys.MkdirAll(dir, defaultDirMode); err != nil {
			return op.failure("create parent directory", fmt.Errorf("mkdir %s: %w", dir, err))
		}
	}

	if err := fsys.WriteFile(op.Path(), []byte(op.content), defaultFileMode); err != nil {
		return op.failure("write file", err)
	}
	return op.result(core.KindMaterialized, fmt.Sprintf("restored %d bytes", len(op.content)))
}
