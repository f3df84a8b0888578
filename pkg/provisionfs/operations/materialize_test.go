package operations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/testutil"
)

func TestMaterializeOperation(t *testing.T) {
	ctx := context.Background()
	canonical := core.CanonicalFile{
		Path:    "includes/classes/cache/builder/BuildCache.interface.php",
		Content: "<?php\ninterface BuildCache\n{\n}\n\n  \t",
	}

	t.Run("writes missing file with parents", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		op := operations.NewMaterializeOperation("restore", canonical)
		if got, want := op.Content(), "<?php\ninterface BuildCache\n{\n}"; got != want {
			t.Fatalf("Content() = %q, want %q", got, want)
		}

		res := op.Execute(ctx, th.FileSystem())
		if res.Kind != core.KindMaterialized {
			t.Fatalf("expected %s, got %s (%v)", core.KindMaterialized, res.Kind, res.Err)
		}
		th.AssertFileContent(canonical.Path, op.Content())
		if !th.FileExists("includes/classes/cache/builder") {
			t.Error("expected parent directories to be created")
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		op := operations.NewMaterializeOperation("restore", canonical)

		first := op.Execute(ctx, th.FileSystem())
		second := op.Execute(ctx, th.FileSystem())
		if first.Kind != core.KindMaterialized || second.Kind != core.KindAlreadyPresent {
			t.Fatalf("expected materialized then already-present, got %s then %s", first.Kind, second.Kind)
		}
		if n := th.FileSystem().Writes[canonical.Path]; n != 1 {
			t.Errorf("expected exactly one write, got %d", n)
		}
	})

	t.Run("never overwrites existing content", func(t *testing.T) {
		for _, existing := range []string{"", "unrelated content", "<?php // hand edited"} {
			th := testutil.NewTestHelper(t)
			th.WriteFile(canonical.Path, existing)
			op := operations.NewMaterializeOperation("restore", canonical)

			res := op.Execute(ctx, th.FileSystem())
			if res.Kind != core.KindAlreadyPresent {
				t.Errorf("content %q: expected %s, got %s", existing, core.KindAlreadyPresent, res.Kind)
			}
			th.AssertFileContent(canonical.Path, existing)
			th.AssertNotWritten(canonical.Path)
		}
	})

	t.Run("mkdir failure is fatal to this file only", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		boom := errors.New("read-only filesystem")
		th.FileSystem().FailMkdir["includes/classes/cache/builder"] = boom
		op := operations.NewMaterializeOperation("restore", canonical)

		res := op.Execute(ctx, th.FileSystem())
		if res.Kind != core.KindFailed {
			t.Fatalf("expected %s, got %s", core.KindFailed, res.Kind)
		}
		if !errors.Is(res.Err, boom) {
			t.Errorf("expected wrapped mkdir error, got %v", res.Err)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.FileSystem().FailWrites["top.php"] = errors.New("disk full")
		op := operations.NewMaterializeOperation("restore", core.CanonicalFile{Path: "top.php", Content: "x"})

		res := op.Execute(ctx, th.FileSystem())
		if res.Kind != core.KindFailed || res.Err == nil {
			t.Errorf("expected failure, got %s (%v)", res.Kind, res.Err)
		}
		if th.FileExists("top.php") {
			t.Error("failed write must not leave a file behind")
		}
	})

	t.Run("empty path fails validation", func(t *testing.T) {
		op := operations.NewMaterializeOperation("restore", core.CanonicalFile{Content: "x"})
		var vErr *core.ValidationError
		if err := op.Validate(); !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}
