package bridge

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/filesystem"
)

const (
	stepCacheDir          = "ensure-cache-dir"
	stepPermissions       = "set-permissions"
	stepConfigPermissions = "config-permissions"
	stepDetectTool        = "detect-compose-tool"
	stepComposeDown       = "compose-down"
	stepComposeUp         = "compose-up"
)

// Deployment holds the inputs of the deployment sequence and collects the
// warnings and detected tool as the steps run.
type Deployment struct {
	Runner  Runner
	FS      filesystem.FileSystem
	WorkDir string
	Logger  zerolog.Logger

	// CacheDir and IncludesDir are relative to WorkDir.
	CacheDir    string
	IncludesDir string
	// ConfigFile, relative to WorkDir, is chmod'ed best-effort when present.
	ConfigFile string
	// Mode is applied recursively to IncludesDir and CacheDir.
	Mode fs.FileMode
	// Tools overrides the probe order of DefaultComposeTools.
	Tools []ComposeTool

	tool     ComposeTool
	warnings []string
}

// Tool returns the compose tool chosen by detection, if it ran.
func (d *Deployment) Tool() ComposeTool {
	return d.tool
}

// Warnings returns non-fatal problems met by the steps.
func (d *Deployment) Warnings() []string {
	return append([]string(nil), d.warnings...)
}

// Steps returns the deployment sequence.
func (d *Deployment) Steps() []Step {
	return []Step{
		{
			ID:          stepCacheDir,
			Description: "Ensuring cache directory exists",
			Run:         d.ensureCacheDir,
		},
		{
			ID:          stepPermissions,
			Description: "Fixing permissions",
			DependsOn:   []string{stepCacheDir},
			Run: func(ctx context.Context) error {
				if w := SetPermissions(ctx, d.Runner, d.Logger, d.WorkDir, d.Mode, d.IncludesDir, d.CacheDir); w != "" {
					d.warnings = append(d.warnings, w)
				}
				return nil
			},
		},
		{
			ID:          stepConfigPermissions,
			Description: "Opening config file permissions",
			DependsOn:   []string{stepPermissions},
			Ignorable:   true,
			Run:         d.chmodConfig,
		},
		{
			ID:          stepDetectTool,
			Description: "Detecting compose tool",
			DependsOn:   []string{stepConfigPermissions},
			Run: func(ctx context.Context) error {
				tool, err := DetectComposeTool(ctx, d.Runner, d.Logger, d.Tools...)
				if err != nil {
					return err
				}
				d.tool = tool
				return nil
			},
		},
		{
			ID:          stepComposeDown,
			Description: "Stopping existing containers",
			DependsOn:   []string{stepDetectTool},
			Ignorable:   true,
			Run: func(ctx context.Context) error {
				return d.Runner.Run(ctx, d.tool.Subcommand("down"), d.WorkDir)
			},
		},
		{
			ID:          stepComposeUp,
			Description: "Starting containers",
			DependsOn:   []string{stepComposeDown},
			Run: func(ctx context.Context) error {
				return RunCommand(ctx, d.Runner, d.Logger, d.tool.Subcommand("up -d --build"), d.WorkDir, false)
			},
		},
	}
}

// Execute resolves and runs the deployment steps.
func (d *Deployment) Execute(ctx context.Context) ([]StepResult, error) {
	plan, err := NewPlan(d.Logger, d.Steps()...)
	if err != nil {
		return nil, err
	}
	return plan.Execute(ctx)
}

func (d *Deployment) ensureCacheDir(context.Context) error {
	exists, err := filesystem.Exists(d.FS, d.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", d.CacheDir, err)
	}
	if exists {
		return nil
	}
	d.Logger.Info().Str("path", d.CacheDir).Msg("creating missing cache directory")
	if err := d.FS.MkdirAll(d.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.CacheDir, err)
	}
	return nil
}

func (d *Deployment) chmodConfig(context.Context) error {
	if d.ConfigFile == "" {
		return nil
	}
	exists, err := filesystem.Exists(d.FS, d.ConfigFile)
	if err != nil || !exists {
		return err
	}
	return d.FS.Chmod(d.ConfigFile, d.Mode)
}
