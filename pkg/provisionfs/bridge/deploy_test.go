package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/bridge"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/testutil"
)

func newDeployment(t *testing.T, runner bridge.Runner) (*bridge.Deployment, *testutil.TestHelper) {
	t.Helper()
	th := testutil.NewTestHelper(t)
	th.WriteFile("includes/config.php", "<?php")
	return &bridge.Deployment{
		Runner:      runner,
		FS:          th.FileSystem(),
		WorkDir:     "/srv/app",
		Logger:      zerolog.Nop(),
		CacheDir:    "cache",
		IncludesDir: "includes",
		ConfigFile:  "includes/config.php",
		Mode:        0777,
	}, th
}

func TestDeploymentExecute(t *testing.T) {
	runner := newFakeRunner()
	runner.available["docker compose version"] = true
	d, th := newDeployment(t, runner)

	results, err := d.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, th.FileExists("cache"), "cache dir should be created")
	info, err := th.FileSystem().Stat("includes/config.php")
	require.NoError(t, err)
	assert.Equal(t, "-rwxrwxrwx", info.Mode().Perm().String())

	assert.Equal(t, []string{
		"chmod -R 777 includes cache",
		"probe: docker-compose --version",
		"probe: docker compose version",
		"docker compose down",
		"docker compose up -d --build",
	}, runner.commands)
	assert.Equal(t, bridge.PluginCompose, d.Tool())
	assert.Empty(t, d.Warnings())

	for _, r := range results {
		assert.Equal(t, bridge.StepSucceeded, r.Status, r.ID)
	}
}

func TestDeploymentDownFailureIgnored(t *testing.T) {
	runner := newFakeRunner()
	runner.available["docker-compose --version"] = true
	runner.failures["docker-compose down"] = 1
	d, _ := newDeployment(t, runner)

	results, err := d.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docker-compose up -d --build", runner.commands[len(runner.commands)-1])

	statuses := map[string]bridge.StepStatus{}
	for _, r := range results {
		statuses[r.ID] = r.Status
	}
	assert.Equal(t, bridge.StepFailedIgnored, statuses["compose-down"])
	assert.Equal(t, bridge.StepSucceeded, statuses["compose-up"])
}

func TestDeploymentToolMissing(t *testing.T) {
	runner := newFakeRunner()
	d, _ := newDeployment(t, runner)

	_, err := d.Execute(context.Background())
	assert.True(t, errors.Is(err, core.ErrToolNotFound))
	for _, c := range runner.commands {
		assert.NotContains(t, c, "up -d")
	}
}

func TestDeploymentUpFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.available["docker-compose --version"] = true
	runner.failures["docker-compose up"] = 17
	d, _ := newDeployment(t, runner)

	_, err := d.Execute(context.Background())
	var cmdErr *core.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 17, cmdErr.ExitCode)

	var stepErr *core.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "compose-up", stepErr.StepID)
}

func TestDeploymentPermissionWarning(t *testing.T) {
	runner := newFakeRunner()
	runner.available["docker-compose --version"] = true
	runner.failures["chmod"] = 1
	runner.failures["sudo"] = 1
	d, _ := newDeployment(t, runner)

	_, err := d.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Warnings(), 1)
	assert.Contains(t, d.Warnings()[0], "set them manually")
}
