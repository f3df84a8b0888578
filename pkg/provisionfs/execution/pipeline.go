package execution

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
)

// Pipeline sequences materialization before patching. It never reorders
// patches relative to each other.
type Pipeline struct {
	fsys     filesystem.FileSystem
	executor *Executor
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline writing to fsys.
func NewPipeline(fsys filesystem.FileSystem, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		fsys:     fsys,
		executor: NewExecutor(logger),
		logger:   logger,
	}
}

// Plan returns the operations Run would execute, in order.
func (p *Pipeline) Plan(files []core.CanonicalFile, patches []core.PatchSpec, extra ...operations.Operation) []operations.Operation {
	ops := make([]operations.Operation, 0, len(files)+len(patches)+len(extra))
	for i, f := range files {
		id := core.OperationID(fmt.Sprintf("materialize_%03d", i+1))
		ops = append(ops, operations.NewMaterializeOperation(id, f))
	}
	for i, spec := range patches {
		id := core.OperationID(fmt.Sprintf("patch_%03d", i+1))
		ops = append(ops, operations.NewPatchOperation(id, spec))
	}
	return append(ops, extra...)
}

// Run materializes every canonical file, applies every patch, then runs
// any extra operations. Per-operation failures are recorded in the report.
func (p *Pipeline) Run(ctx context.Context, files []core.CanonicalFile, patches []core.PatchSpec, extra ...operations.Operation) *core.Report {
	p.logger.Info().
		Int("canonical_files", len(files)).
		Int("patches", len(patches)).
		Int("extra_operations", len(extra)).
		Msg("running provisioning pipeline")
	return p.executor.Run(ctx, p.fsys, p.Plan(files, patches, extra...))
}
