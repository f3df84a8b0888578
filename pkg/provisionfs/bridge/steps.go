package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/toposort"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// Step is one unit of the deployment sequence.
type Step struct {
	ID          string
	Description string
	// DependsOn lists step IDs that must complete first.
	DependsOn []string
	// Ignorable steps log their failure and let the sequence continue.
	Ignorable bool

	Run func(ctx context.Context) error
}

// StepStatus is the outcome of a step.
type StepStatus string

const (
	StepSucceeded     StepStatus = "SUCCEEDED"
	StepFailedIgnored StepStatus = "FAILED_IGNORED"
	StepFailed        StepStatus = "FAILED"
	StepNotRun        StepStatus = "NOT_RUN"
)

// StepResult records what happened to one step.
type StepResult struct {
	ID          string
	Description string
	Status      StepStatus
	Err         error
	Duration    time.Duration
}

// Plan is an ordered set of steps.
type Plan struct {
	steps  []Step
	index  map[string]int
	logger zerolog.Logger
}

// NewPlan creates a plan. An error is returned for duplicate or empty IDs.
func NewPlan(logger zerolog.Logger, steps ...Step) (*Plan, error) {
	p := &Plan{index: make(map[string]int, len(steps)), logger: logger}
	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step ID cannot be empty")
		}
		if _, exists := p.index[s.ID]; exists {
			return nil, fmt.Errorf("step with ID %s already exists", s.ID)
		}
		p.index[s.ID] = len(p.steps)
		p.steps = append(p.steps, s)
	}
	return p, nil
}

// Order resolves the steps into dependency order.
func (p *Plan) Order() ([]Step, error) {
	edges := make([]toposort.Edge, 0)
	for _, s := range p.steps {
		for _, dep := range s.DependsOn {
			if _, ok := p.index[dep]; !ok {
				return nil, fmt.Errorf("step %s depends on unknown step %s", s.ID, dep)
			}
			// dependency -> step
			edges = append(edges, toposort.Edge{dep, s.ID})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("circular dependency detected: %w", err)
	}

	ordered := make([]Step, 0, len(p.steps))
	added := make(map[string]bool, len(p.steps))
	for _, v := range sorted {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type in topological sort result: %T", v)
		}
		ordered = append(ordered, p.steps[p.index[id]])
		added[id] = true
	}
	// Steps outside the dependency graph keep declaration order.
	for _, s := range p.steps {
		if !added[s.ID] {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// Execute runs the steps in dependency order. The first failure of a
// non-ignorable step stops the sequence: it and every remaining step are
// recorded and a *core.StepError is returned.
func (p *Plan) Execute(ctx context.Context) ([]StepResult, error) {
	ordered, err := p.Order()
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(ordered))
	for i, s := range ordered {
		if err := ctx.Err(); err != nil {
			results = append(results, notRun(ordered[i:])...)
			return results, &core.StepError{StepID: s.ID, Err: err}
		}

		p.logger.Info().Str("step", s.ID).Msg(s.Description)
		start := time.Now()
		runErr := s.Run(ctx)
		res := StepResult{ID: s.ID, Description: s.Description, Status: StepSucceeded, Err: runErr, Duration: time.Since(start)}

		switch {
		case runErr == nil:
		case s.Ignorable:
			res.Status = StepFailedIgnored
			p.logger.Warn().Err(runErr).Str("step", s.ID).Msg("step failed (ignored)")
		default:
			res.Status = StepFailed
			p.logger.Error().Err(runErr).Str("step", s.ID).Msg("step failed")
			results = append(results, res)
			results = append(results, notRun(ordered[i+1:])...)
			return results, &core.StepError{StepID: s.ID, Err: runErr}
		}
		results = append(results, res)
	}
	return results, nil
}

func notRun(steps []Step) []StepResult {
	out := make([]StepResult, len(steps))
	for i, s := range steps {
		out[i] = StepResult{ID: s.ID, Description: s.Description, Status: StepNotRun}
	}
	return out
}
