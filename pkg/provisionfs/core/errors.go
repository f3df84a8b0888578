package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolNotFound is matched by ToolNotFoundError via errors.Is.
var ErrToolNotFound = errors.New("no container orchestration tool found")

// ValidationError represents an invalid operation definition.
type ValidationError struct {
	OperationID   OperationID
	OperationDesc OperationDesc
	Reason        string
	Cause         error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error for operation %s (%s): %s: %v",
			e.OperationID, e.OperationDesc.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("validation error for operation %s (%s): %s",
		e.OperationID, e.OperationDesc.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// CommandError is returned when an external command exits non-zero or
// cannot be started.
type CommandError struct {
	Command  string
	WorkDir  string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %q failed (exit %d)", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ToolNotFoundError is returned when none of the probed orchestration tools respond.
type ToolNotFoundError struct {
	Probed []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%v (tried: %s)", ErrToolNotFound, strings.Join(e.Probed, ", "))
}

func (e *ToolNotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// StepError wraps the failure of a deployment step. It is the terminal
// result of the orchestration phase.
type StepError struct {
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("deployment step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
