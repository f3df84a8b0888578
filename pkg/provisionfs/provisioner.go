// Package provisionfs restores a deployment target's missing source files,
// applies compatibility patches, and hands the tree to the container
// orchestration tool.
//
// Per-file outcomes are collected in a core.Report and never fail a run. Only
// orchestration failures such as a missing compose tool are returned as errors.
package provisionfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/bridge"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/config"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/execution"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/registry"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/report"
)

// Result is everything a run produced.
type Result struct {
	Report   *core.Report
	Steps    []bridge.StepResult
	Port     int
	Endpoint string
	Warnings []string
	// DryRunChanges lists the paths a dry run would have modified.
	DryRunChanges []string
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// WithRunner replaces the shell used for orchestration commands.
func WithRunner(runner bridge.Runner) Option {
	return func(p *Provisioner) {
		p.runner = runner
	}
}

// WithFileSystem replaces the filesystem rooted at the project dir.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(p *Provisioner) {
		p.fsys = fsys
	}
}

// WithCommandOutput sets where orchestration command output goes.
func WithCommandOutput(stdout, stderr io.Writer) Option {
	return func(p *Provisioner) {
		p.stdout, p.stderr = stdout, stderr
	}
}

// Provisioner runs one provisioning pass over a project directory.
type Provisioner struct {
	cfg    config.Config
	logger zerolog.Logger
	runner bridge.Runner
	fsys   filesystem.FileSystem
	stdout io.Writer
	stderr io.Writer
}

// New creates a Provisioner for cfg.
func New(cfg config.Config, opts ...Option) *Provisioner {
	p := &Provisioner{
		cfg:    cfg,
		logger: DefaultLogger(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run provisions the tree and, unless skipped, deploys it. The returned
// error is the terminal orchestration failure; the Result is populated
// as far as the run got.
func (p *Provisioner) Run(ctx context.Context) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical content: %w", err)
	}

	fsys := p.fsys
	if fsys == nil {
		fsys = filesystem.NewOSFileSystem(p.cfg.Dir)
	}
	var dryFS *DryRunFS
	if p.cfg.DryRun {
		dryFS = NewDryRunFS(fsys)
		fsys = dryFS
	}

	result := &Result{
		Port:     p.cfg.Port,
		Endpoint: report.Endpoint(p.cfg.Port),
	}

	p.logger.Info().
		Str("dir", p.cfg.Dir).
		Int("port", p.cfg.Port).
		Bool("dry_run", p.cfg.DryRun).
		Msg("provisioning project")

	pipeline := execution.NewPipeline(fsys, p.logger)
	result.Report = pipeline.Run(ctx, reg.Files(), reg.Patches(),
		operations.NewRewriteTokenOperation("rewrite_port", registry.ComposeDescriptorPath,
			registry.DefaultPortMapping, registry.PortMapping(p.cfg.Port)),
		operations.NewTouchOperation("install_marker", registry.InstallMarkerPath),
	)

	if w := p.checkPublishedPort(fsys); w != "" {
		result.Warnings = append(result.Warnings, w)
	}

	var runErr error
	if !p.cfg.SkipOrchestration {
		deployment := &bridge.Deployment{
			Runner:      p.shell(),
			FS:          fsys,
			WorkDir:     p.cfg.Dir,
			Logger:      p.logger,
			CacheDir:    registry.CacheDir,
			IncludesDir: registry.IncludesDir,
			ConfigFile:  registry.ConfigPath,
			Mode:        0777,
		}
		result.Steps, runErr = deployment.Execute(ctx)
		result.Warnings = append(result.Warnings, deployment.Warnings()...)
	}

	if dryFS != nil {
		result.DryRunChanges = dryFS.Changes()
	}
	return result, runErr
}

func (p *Provisioner) shell() bridge.Runner {
	if p.runner != nil {
		return p.runner
	}
	return bridge.NewShell(p.logger,
		bridge.WithOutput(p.stdout, p.stderr),
		bridge.WithDryRun(p.cfg.DryRun),
	)
}

// checkPublishedPort warns when the descriptor does not publish the port.
func (p *Provisioner) checkPublishedPort(fsys filesystem.ReadFS) string {
	data, err := fsys.ReadFile(registry.ComposeDescriptorPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("%s not found; containers cannot be started from %s", registry.ComposeDescriptorPath, p.cfg.Dir)
	}
	if err != nil {
		return fmt.Sprintf("could not read %s: %v", registry.ComposeDescriptorPath, err)
	}
	bindings, err := bridge.PublishedPorts(data)
	if err != nil {
		return err.Error()
	}
	if !bridge.Publishes(bindings, p.cfg.Port) {
		return fmt.Sprintf("%s does not publish host port %d", registry.ComposeDescriptorPath, p.cfg.Port)
	}
	return ""
}
