package operations_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/testutil"
)

const composeFile = `services:
  web:
    ports:
      - "3838:80"
`

func TestRewriteTokenOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites port then becomes a no-op", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("docker-compose.yml", composeFile)
		op := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "9000:80")

		first := op.Execute(ctx, th.FileSystem())
		if first.Kind != core.KindPatched {
			t.Fatalf("expected %s, got %s (%v)", core.KindPatched, first.Kind, first.Err)
		}
		th.AssertFileContent("docker-compose.yml", `services:
  web:
    ports:
      - "9000:80"
`)

		second := op.Execute(ctx, th.FileSystem())
		if second.Kind != core.KindAlreadyPatched {
			t.Fatalf("expected %s, got %s", core.KindAlreadyPatched, second.Kind)
		}
		if n := th.FileSystem().Writes["docker-compose.yml"]; n != 1 {
			t.Errorf("expected one write, got %d", n)
		}
	})

	t.Run("port ending in the default token is stable across runs", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("docker-compose.yml", composeFile)
		op := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "13838:80")

		first := op.Execute(ctx, th.FileSystem())
		if first.Kind != core.KindPatched {
			t.Fatalf("expected %s, got %s (%v)", core.KindPatched, first.Kind, first.Err)
		}
		after := th.ReadFile("docker-compose.yml")

		second := op.Execute(ctx, th.FileSystem())
		if second.Kind != core.KindAlreadyPatched {
			t.Fatalf("expected %s, got %s", core.KindAlreadyPatched, second.Kind)
		}
		if got := th.ReadFile("docker-compose.yml"); got != after {
			t.Errorf("content changed on second run:\nfirst:  %q\nsecond: %q", after, got)
		}
		th.AssertFileContent("docker-compose.yml", `services:
  web:
    ports:
      - "13838:80"
`)
		if n := th.FileSystem().Writes["docker-compose.yml"]; n != 1 {
			t.Errorf("expected one write, got %d", n)
		}
	})

	t.Run("only standalone tokens are rewritten", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("docker-compose.yml", "a: \"13838:80\"\nb: \"3838:80\"\nc: \"3838:8080\"\n")
		res := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "13838:80").
			Execute(ctx, th.FileSystem())
		if res.Kind != core.KindPatched {
			t.Fatalf("expected %s, got %s (%v)", core.KindPatched, res.Kind, res.Err)
		}
		th.AssertFileContent("docker-compose.yml", "a: \"13838:80\"\nb: \"13838:80\"\nc: \"3838:8080\"\n")
	})

	t.Run("default port writes nothing", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("docker-compose.yml", composeFile)
		res := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "3838:80").
			Execute(ctx, th.FileSystem())
		if res.Kind != core.KindAlreadyPatched {
			t.Fatalf("expected %s, got %s", core.KindAlreadyPatched, res.Kind)
		}
		th.AssertNotWritten("docker-compose.yml")
	})

	t.Run("neither token nor replacement", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("docker-compose.yml", "services: {}\n")
		res := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "9000:80").
			Execute(ctx, th.FileSystem())
		if res.Kind != core.KindSkippedNotFound {
			t.Fatalf("expected %s, got %s", core.KindSkippedNotFound, res.Kind)
		}
	})

	t.Run("missing descriptor", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		res := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "3838:80", "9000:80").
			Execute(ctx, th.FileSystem())
		if res.Kind != core.KindSkippedMissingFile {
			t.Fatalf("expected %s, got %s", core.KindSkippedMissingFile, res.Kind)
		}
	})

	t.Run("empty token is invalid", func(t *testing.T) {
		op := operations.NewRewriteTokenOperation("port", "docker-compose.yml", "", "9000:80")
		if op.Validate() == nil {
			t.Error("expected validation error for empty token")
		}
	})
}
