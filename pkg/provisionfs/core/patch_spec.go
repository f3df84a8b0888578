package core

import "strings"

// PatchSpec describes one intended textual transformation of a file.
// Replacement appearing in the file is treated as proof the patch was applied.
type PatchSpec struct {
	ID          OperationID
	Path        string
	Target      string
	Replacement string
	Description string
}

// Validate checks that "already applied" and "not yet applied" can be told
// apart for this patch.
func (p PatchSpec) Validate() error {
	reason := ""
	switch {
	case p.Path == "":
		reason = "path cannot be empty"
	case p.Target == "":
		reason = "target cannot be empty"
	case p.Target == p.Replacement:
		reason = "replacement is identical to target"
	case p.Replacement == "":
		reason = "replacement cannot be empty"
	case strings.Contains(p.Target, p.Replacement):
		// Every unpatched file would already contain the replacement.
		reason = "target contains the replacement"
	}
	if reason == "" {
		return nil
	}
	return &ValidationError{
		OperationID: p.ID,
		OperationDesc: OperationDesc{
			Type: "patch",
			Path: p.Path,
		},
		Reason: reason,
	}
}
