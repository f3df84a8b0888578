package operations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/match"
)

// PatchOperation applies one PatchSpec to an existing file. Only an exact,
// verbatim match of the target leads to a write.
type PatchOperation struct {
	*BaseOperation
	spec core.PatchSpec
}

// NewPatchOperation creates a patch operation. The spec's ID wins over id when set.
func NewPatchOperation(id core.OperationID, spec core.PatchSpec) *PatchOperation {
	if spec.ID != "" {
		id = spec.ID
	}
	spec.ID = id
	op := &PatchOperation{
		BaseOperation: NewBaseOperation(id, "patch", spec.Path),
		spec:          spec,
	}
	if spec.Description != "" {
		op.setDetail("description", spec.Description)
	}
	return op
}

// Spec returns the patch definition.
func (op *PatchOperation) Spec() core.PatchSpec {
	return op.spec
}

// Validate checks the patch can distinguish applied from not applied.
func (op *PatchOperation) Validate() error {
	return op.spec.Validate()
}

// Execute reads the file, asks the match engine for a decision and writes
// back only on an exact match.
func (op *PatchOperation) Execute(ctx context.Context, fsys filesystem.FileSystem) core.OperationResult {
	info, err := fsys.Stat(op.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return op.result(core.KindSkippedMissingFile, "file not found")
	}
	if err != nil {
		return op.failure("stat file", err)
	}

	data, err := fsys.ReadFile(op.Path())
	if err != nil {
		return op.failure("read file", err)
	}
	content := string(data)

	decision := match.Evaluate(content, op.spec.Target, op.spec.Replacement)
	switch decision.Outcome {
	case match.AlreadyApplied:
		return op.result(core.KindAlreadyPatched, "replacement already present")

	case match.ExactMatchFound:
		patched, ok := decision.Apply(content, op.spec.Target, op.spec.Replacement)
		if !ok {
			return op.failure("apply patch", errors.New("match decision no longer applies"))
		}
		if err := fsys.WriteFile(op.Path(), []byte(patched), info.Mode().Perm()); err != nil {
			return op.failure("write file", err)
		}
		return op.result(core.KindPatched, fmt.Sprintf("replaced target at offset %d", decision.Offset))

	case match.NormalizedMatchOnly:
		return op.result(core.KindSkippedAmbiguous,
			"exact match failed but target matches with whitespace ignored; file formatting differs from expected, not patched")

	default:
		return op.result(core.KindSkippedNotFound, "target not found")
	}
}
