package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// ComposeTool identifies a container composition CLI variant.
type ComposeTool struct {
	// Name is the human-readable name
	Name string
	// Command is the prefix for compose subcommands
	Command string
	// ProbeCommand exits zero when the tool is usable
	ProbeCommand string
}

// Subcommand returns the full command line for a compose subcommand.
func (t ComposeTool) Subcommand(args string) string {
	return t.Command + " " + args
}

var (
	// StandaloneCompose is the standalone docker-compose binary.
	StandaloneCompose = ComposeTool{
		Name:         "docker-compose",
		Command:      "docker-compose",
		ProbeCommand: "docker-compose --version",
	}
	// PluginCompose is the compose plugin of the docker CLI.
	PluginCompose = ComposeTool{
		Name:         "docker compose",
		Command:      "docker compose",
		ProbeCommand: "docker compose version",
	}
)

// DefaultComposeTools lists the variants in preference order.
func DefaultComposeTools() []ComposeTool {
	return []ComposeTool{StandaloneCompose, PluginCompose}
}

// DetectComposeTool returns the first tool in candidates whose probe
// succeeds, or a *core.ToolNotFoundError naming every probe tried.
func DetectComposeTool(ctx context.Context, runner Runner, logger zerolog.Logger, candidates ...ComposeTool) (ComposeTool, error) {
	if len(candidates) == 0 {
		candidates = DefaultComposeTools()
	}

	probed := make([]string, 0, len(candidates))
	for _, tool := range candidates {
		if err := ctx.Err(); err != nil {
			return ComposeTool{}, err
		}
		probed = append(probed, tool.Name)
		if runner.Probe(ctx, tool.ProbeCommand) {
			logger.Info().Str("tool", tool.Name).Msg("detected compose tool")
			return tool, nil
		}
	}
	return ComposeTool{}, &core.ToolNotFoundError{Probed: probed}
}
