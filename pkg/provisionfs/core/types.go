package core

import (
	"strings"
	"time"
)

// OperationID uniquely identifies an operation within a pipeline run
type OperationID string

// OperationDesc describes an operation's type and target
type OperationDesc struct {
	Type    string
	Path    string
	Details map[string]interface{}
}

// ResultKind is the outcome of a single provisioning operation
type ResultKind string

const (
	// KindMaterialized indicates a missing file was written from canonical content
	KindMaterialized ResultKind = "MATERIALIZED"
	// KindAlreadyPresent indicates the file existed and was left untouched
	KindAlreadyPresent ResultKind = "ALREADY_PRESENT"
	// KindPatched indicates the patch was applied and the file rewritten
	KindPatched ResultKind = "PATCHED"
	// KindAlreadyPatched indicates the replacement was already in the file
	KindAlreadyPatched ResultKind = "ALREADY_PATCHED"
	// KindSkippedAmbiguous indicates the target only matched after whitespace normalization
	KindSkippedAmbiguous ResultKind = "SKIPPED_AMBIGUOUS"
	// KindSkippedNotFound indicates the target was not found in any form
	KindSkippedNotFound ResultKind = "SKIPPED_NOT_FOUND"
	// KindSkippedMissingFile indicates the file to patch does not exist
	KindSkippedMissingFile ResultKind = "SKIPPED_MISSING_FILE"
	// KindFailed indicates an I/O error; fatal to this operation only
	KindFailed ResultKind = "FAILED"
)

// Skipped reports whether the kind is one of the recoverable skip variants.
func (k ResultKind) Skipped() bool {
	return strings.HasPrefix(string(k), "SKIPPED_")
}

// Changed reports whether the operation wrote to the filesystem.
func (k ResultKind) Changed() bool {
	return k == KindMaterialized || k == KindPatched
}

// CanonicalFile is one file the engine can restore from scratch.
type CanonicalFile struct {
	Path    string
	Content string
}

// OperationResult is the audit unit emitted for every operation.
type OperationResult struct {
	OperationID OperationID
	Type        string
	Path        string
	Kind        ResultKind
	Detail      string
	Err         error
	Duration    time.Duration
}

// Report holds the outcome of every operation in a pipeline run. It is a
// record, not an error: nothing in it aborts the run.
type Report struct {
	Operations []OperationResult
	Duration   time.Duration
}

// Count returns the number of operations that ended with the given kind.
func (r *Report) Count(kind ResultKind) int {
	n := 0
	for _, op := range r.Operations {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Skipped returns the operations that were skipped for any reason.
func (r *Report) Skipped() []OperationResult {
	return r.filter(func(k ResultKind) bool { return k.Skipped() })
}

// Failed returns the operations that hit an I/O error.
func (r *Report) Failed() []OperationResult {
	return r.filter(func(k ResultKind) bool { return k == KindFailed })
}

// Changed returns the operations that wrote to the filesystem.
func (r *Report) Changed() []OperationResult {
	return r.filter(ResultKind.Changed)
}

func (r *Report) filter(keep func(ResultKind) bool) []OperationResult {
	var out []OperationResult
	for _, op := range r.Operations {
		if keep(op.Kind) {
			out = append(out, op)
		}
	}
	return out
}
