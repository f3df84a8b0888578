package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// Runner executes shell commands for the deployment steps.
type Runner interface {
	// Run executes command in workDir; a non-zero exit is a *core.CommandError.
	Run(ctx context.Context, command, workDir string) error
	// Probe reports whether command runs and exits zero, discarding output.
	Probe(ctx context.Context, command string) bool
}

// ShellOptions configures how a Shell executes commands
type ShellOptions struct {
	// Stdout and Stderr receive command output (defaults to the process streams)
	Stdout io.Writer
	Stderr io.Writer

	// Env sets environment variables in addition to the current environment
	Env map[string]string

	// Timeout bounds each command; zero means no timeout
	Timeout time.Duration

	// DryRun logs commands passed to Run instead of executing them. Probes still run.
	DryRun bool
}

// ShellOption is a function that configures ShellOptions
type ShellOption func(*ShellOptions)

// WithOutput sets where command output goes
func WithOutput(stdout, stderr io.Writer) ShellOption {
	return func(opts *ShellOptions) {
		opts.Stdout = stdout
		opts.Stderr = stderr
	}
}

// WithEnv sets environment variables for the commands
func WithEnv(env map[string]string) ShellOption {
	return func(opts *ShellOptions) {
		for k, v := range env {
			opts.Env[k] = v
		}
	}
}

// WithTimeout sets a timeout for each command
func WithTimeout(timeout time.Duration) ShellOption {
	return func(opts *ShellOptions) {
		opts.Timeout = timeout
	}
}

// WithDryRun makes Run log instead of execute
func WithDryRun(dryRun bool) ShellOption {
	return func(opts *ShellOptions) {
		opts.DryRun = dryRun
	}
}

// Shell runs commands with an in-process POSIX shell interpreter, so no
// system sh is required. External programs are still executed as processes.
type Shell struct {
	opts   ShellOptions
	logger zerolog.Logger
}

// NewShell creates a Shell writing to the process streams by default.
func NewShell(logger zerolog.Logger, options ...ShellOption) *Shell {
	opts := ShellOptions{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    make(map[string]string),
	}
	for _, opt := range options {
		opt(&opts)
	}
	return &Shell{opts: opts, logger: logger}
}

// Run implements Runner.
func (s *Shell) Run(ctx context.Context, command, workDir string) error {
	s.logger.Info().
		Str("command", command).
		Str("work_dir", workDir).
		Bool("dry_run", s.opts.DryRun).
		Msg("running command")

	if s.opts.DryRun {
		// Still reject what would not parse.
		if _, err := parse(command); err != nil {
			return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: 2, Err: err}
		}
		return nil
	}
	return s.exec(ctx, command, workDir, s.opts.Stdout, s.opts.Stderr)
}

// Probe implements Runner.
func (s *Shell) Probe(ctx context.Context, command string) bool {
	err := s.exec(ctx, command, "", io.Discard, io.Discard)
	s.logger.Debug().
		Str("command", command).
		Bool("available", err == nil).
		Msg("probed command")
	return err == nil
}

func (s *Shell) exec(ctx context.Context, command, workDir string, stdout, stderr io.Writer) error {
	prog, err := parse(command)
	if err != nil {
		return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: 2, Err: err}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(s.environ()...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if workDir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(workDir))
	}
	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: 1, Err: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: int(status)}
		}
		return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: 1, Err: err}
	}
	return nil
}

func (s *Shell) environ() []string {
	env := os.Environ()
	for k, v := range s.opts.Env {
		env = append(env, k+"="+v)
	}
	return env
}

func parse(command string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("command syntax error: %w", err)
	}
	return prog, nil
}

// Quote returns s quoted for safe use as a single shell word.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// Only unquotable input such as NUL bytes ends up here.
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}

// RunCommand runs command and applies the failure policy of the call site:
// a failure is returned unless ignoreFailure is set, in which case it is
// logged as a warning.
func RunCommand(ctx context.Context, runner Runner, logger zerolog.Logger, command, workDir string, ignoreFailure bool) error {
	err := runner.Run(ctx, command, workDir)
	if err == nil {
		return nil
	}
	if ignoreFailure {
		logger.Warn().Err(err).Str("command", command).Msg("command failed (ignored)")
		return nil
	}
	logger.Error().Err(err).Str("command", command).Msg("command failed")
	return err
}
