package operations

import (
	"context"
	"time"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

// TouchOperation maintains an empty marker file whose existence enables a
// mode of the target application. Its modification time is refreshed on
// every run.
type TouchOperation struct {
	*BaseOperation
	now func() time.Time
}

// NewTouchOperation creates a marker operation for path.
func NewTouchOperation(id core.OperationID, path string) *TouchOperation {
	return &TouchOperation{
		BaseOperation: NewBaseOperation(id, "touch", path),
		now:           time.Now,
	}
}

// Execute creates the marker if missing, then refreshes its timestamps.
func (op *TouchOperation) Execute(ctx context.Context, fsys filesystem.FileSystem) core.OperationResult {
	exists, err := filesystem.Exists(fsys, op.Path())
	if err != nil {
		return op.failure("stat marker", err)
	}

	kind, detail := core.KindAlreadyPresent, "marker refreshed"
	if !exists {
		if err := fsys.WriteFile(op.Path(), nil, defaultFileMode); err != nil {
			return op.failure("create marker", err)
		}
		kind, detail = core.KindMaterialized, "marker created"
	}

	now := op.now()
	if err := fsys.Chtimes(op.Path(), now, now); err != nil {
		return op.failure("refresh marker timestamp", err)
	}
	return op.result(kind, detail)
}
