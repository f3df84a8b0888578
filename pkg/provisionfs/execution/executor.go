package execution

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
)

// Executor runs operations one after another against a filesystem. It is a
// best-effort batch: a failed or skipped operation never stops the next one.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor creates a new Executor
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes ops in order and returns one result per operation.
func (e *Executor) Run(ctx context.Context, fsys filesystem.FileSystem, ops []operations.Operation) *core.Report {
	start := time.Now()
	report := &core.Report{Operations: make([]core.OperationResult, 0, len(ops))}

	e.logger.Info().
		Int("operation_count", len(ops)).
		Msg("starting execution")

	for i, op := range ops {
		desc := op.Describe()

		if err := ctx.Err(); err != nil {
			report.Operations = append(report.Operations, core.OperationResult{
				OperationID: op.ID(),
				Type:        desc.Type,
				Path:        desc.Path,
				Kind:        core.KindFailed,
				Detail:      "not run: execution cancelled",
				Err:         err,
			})
			continue
		}

		e.logger.Debug().
			Str("op_id", string(op.ID())).
			Str("op_type", desc.Type).
			Str("path", desc.Path).
			Int("operation_index", i+1).
			Int("total_operations", len(ops)).
			Msg("executing operation")

		var res core.OperationResult
		opStart := time.Now()
		if err := op.Validate(); err != nil {
			res = core.OperationResult{
				OperationID: op.ID(),
				Type:        desc.Type,
				Path:        desc.Path,
				Kind:        core.KindFailed,
				Detail:      "invalid operation",
				Err:         err,
			}
		} else {
			res = op.Execute(ctx, fsys)
		}
		res.Duration = time.Since(opStart)

		e.logResult(res)
		report.Operations = append(report.Operations, res)
	}

	report.Duration = time.Since(start)
	e.logger.Info().
		Int("changed", len(report.Changed())).
		Int("skipped", len(report.Skipped())).
		Int("failed", len(report.Failed())).
		Dur("duration", report.Duration).
		Msg("execution completed")
	return report
}

func (e *Executor) logResult(res core.OperationResult) {
	var event *zerolog.Event
	switch res.Kind {
	case core.KindFailed:
		event = e.logger.Error().Err(res.Err)
	case core.KindSkippedAmbiguous:
		// Formatting drift, distinct from a missing target.
		event = e.logger.Warn()
	default:
		event = e.logger.Info()
	}
	event.
		Str("op_id", string(res.OperationID)).
		Str("op_type", res.Type).
		Str("path", res.Path).
		Str("kind", string(res.Kind)).
		Str("detail", res.Detail).
		Dur("duration", res.Duration).
		Msg("operation finished")
}
