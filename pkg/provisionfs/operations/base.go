package operations

import (
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// BaseOperation provides a base implementation of the Operation interface.
// Operations are created complete and immutable.
type BaseOperation struct {
	id          core.OperationID
	description core.OperationDesc
}

// NewBaseOperation creates a new base operation.
func NewBaseOperation(id core.OperationID, descType string, path string) *BaseOperation {
	return &BaseOperation{
		id: id,
		description: core.OperationDesc{
			Type:    descType,
			Path:    path,
			Details: make(map[string]interface{}),
		},
	}
}

// ID returns the operation's ID.
func (op *BaseOperation) ID() core.OperationID {
	return op.id
}

// Describe returns the operation's description.
func (op *BaseOperation) Describe() core.OperationDesc {
	return op.description
}

// Path returns the operation's target path.
func (op *BaseOperation) Path() string {
	return op.description.Path
}

// setDetail records a detail in the operation's description.
func (op *BaseOperation) setDetail(key string, value interface{}) {
	op.description.Details[key] = value
}

// Validate rejects empty paths.
func (op *BaseOperation) Validate() error {
	if op.description.Path == "" {
		return &core.ValidationError{
			OperationID:   op.id,
			OperationDesc: op.description,
			Reason:        "path cannot be empty",
		}
	}
	return nil
}

func (op *BaseOperation) result(kind core.ResultKind, detail string) core.OperationResult {
	return core.OperationResult{
		OperationID: op.id,
		Type:        op.description.Type,
		Path:        op.description.Path,
		Kind:        kind,
		Detail:      detail,
	}
}

func (op *BaseOperation) failure(action string, err error) core.OperationResult {
	r := op.result(core.KindFailed, "failed to "+action)
	r.Err = err
	return r
}
