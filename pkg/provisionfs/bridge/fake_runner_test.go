package bridge_test

import (
	"context"
	"strings"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

// fakeRunner records commands and fails those with a configured exit code.
type fakeRunner struct {
	commands  []string
	failures  map[string]int
	available map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{failures: make(map[string]int), available: make(map[string]bool)}
}

func (f *fakeRunner) Run(_ context.Context, command, workDir string) error {
	f.commands = append(f.commands, command)
	for prefix, code := range f.failures {
		if strings.HasPrefix(command, prefix) {
			return &core.CommandError{Command: command, WorkDir: workDir, ExitCode: code}
		}
	}
	return nil
}

func (f *fakeRunner) Probe(_ context.Context, command string) bool {
	f.commands = append(f.commands, "probe: "+command)
	return f.available[command]
}
