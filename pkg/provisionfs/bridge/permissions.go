package bridge

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
)

// SetPermissions recursively applies mode to paths under workDir. A failed
// attempt is retried once with sudo. If both fail the returned warning is
// non-empty; this function never fails the run.
func SetPermissions(ctx context.Context, runner Runner, logger zerolog.Logger, workDir string, mode fs.FileMode, paths ...string) string {
	if len(paths) == 0 {
		return ""
	}

	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = Quote(p)
	}
	command := fmt.Sprintf("chmod -R %o %s", mode.Perm(), strings.Join(quoted, " "))

	err := runner.Run(ctx, command, workDir)
	if err == nil {
		return ""
	}
	logger.Debug().Err(err).Str("command", command).Msg("chmod failed, retrying with sudo")

	if err := runner.Run(ctx, "sudo "+command, workDir); err != nil {
		logger.Warn().Err(err).Str("command", command).Msg("could not set permissions")
		return fmt.Sprintf("could not set permissions %o on %s; set them manually", mode.Perm(), strings.Join(paths, ", "))
	}
	return ""
}
