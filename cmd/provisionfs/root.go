package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/bridge"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/config"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/report"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd(nil)

// newRootCmd builds the command tree. A nil runner uses the system shell.
func newRootCmd(runner bridge.Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provisionfs",
		Short: "Restore, patch and deploy a containerized PHP project",
		Long: `provisionfs restores source files missing from a project checkout, applies
compatibility patches, points the compose descriptor at the chosen host port,
and (re)starts the containers.

Every step is safe to repeat. Existing files are never overwritten, and a
patch whose target only matches with whitespace ignored is reported for
manual review instead of being applied.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, runner)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on error.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func runProvision(cmd *cobra.Command, runner bridge.Runner) error {
	configFile, err := cmd.Flags().GetString(config.FlagConfig)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	level, err := provisionfs.LogLevelFromString(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	out := cmd.OutOrStdout()
	opts := []provisionfs.Option{
		provisionfs.WithLogger(provisionfs.NewLogger(cmd.ErrOrStderr(), level)),
		provisionfs.WithCommandOutput(out, cmd.ErrOrStderr()),
	}
	if runner != nil {
		opts = append(opts, provisionfs.WithRunner(runner))
	}

	result, runErr := provisionfs.New(*cfg, opts...).Run(cmd.Context())
	if result != nil {
		if err := report.Render(out, result.Report, result.Steps); err != nil {
			return err
		}
		if err := report.RenderWarnings(out, result.Warnings); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if cfg.DryRun {
		printDryRun(out, result.DryRunChanges)
	}
	return printNextSteps(out, result)
}

func printDryRun(w io.Writer, changes []string) {
	fmt.Fprintf(w, "\nDry run: %d path(s) would change\n", len(changes))
	for _, p := range changes {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func printNextSteps(w io.Writer, result *provisionfs.Result) error {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\nNginx Configuration\n%s\n\n", rule, rule)
	if err := report.WriteProxyConfig(w, result.Port); err != nil {
		return fmt.Errorf("failed to write proxy configuration: %w", err)
	}
	fmt.Fprintf(w, "%s\n\nTo start installation, visit: %s\n", rule, result.Endpoint)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of provisionfs`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "provisionfs version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
