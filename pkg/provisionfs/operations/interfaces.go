package operations

import (
	"context"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

// Operation is one file action of a provisioning run. Execute never returns
// an error: every outcome, including I/O failure, is an OperationResult.
type Operation interface {
	ID() core.OperationID
	Describe() core.OperationDesc
	Validate() error
	Execute(ctx context.Context, fsys filesystem.FileSystem) core.OperationResult
}
