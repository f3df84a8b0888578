package operations_test

import (
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/operations"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/testutil"
)

func TestTouchOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates empty marker", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("includes/config.php", "<?php")
		op := operations.NewTouchOperation("marker", "includes/ENABLE_INSTALL_TOOL")

		res := op.Execute(ctx, th.FileSystem())
		if res.Kind != core.KindMaterialized {
			t.Fatalf("expected %s, got %s (%v)", core.KindMaterialized, res.Kind, res.Err)
		}
		th.AssertFileContent("includes/ENABLE_INSTALL_TOOL", "")
	})

	t.Run("refreshes existing marker mtime", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		th.WriteFile("includes/ENABLE_INSTALL_TOOL", "keep")
		old := time.Now().Add(-72 * time.Hour)
		if err := th.FileSystem().Chtimes("includes/ENABLE_INSTALL_TOOL", old, old); err != nil {
			t.Fatal(err)
		}

		res := operations.NewTouchOperation("marker", "includes/ENABLE_INSTALL_TOOL").Execute(ctx, th.FileSystem())
		if res.Kind != core.KindAlreadyPresent {
			t.Fatalf("expected %s, got %s", core.KindAlreadyPresent, res.Kind)
		}
		info, err := th.FileSystem().Stat("includes/ENABLE_INSTALL_TOOL")
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().After(old) {
			t.Errorf("expected mtime to be refreshed, still %v", info.ModTime())
		}
		th.AssertFileContent("includes/ENABLE_INSTALL_TOOL", "keep")
		th.AssertNotWritten("includes/ENABLE_INSTALL_TOOL")
	})

	t.Run("missing parent directory fails", func(t *testing.T) {
		th := testutil.NewTestHelper(t)
		res := operations.NewTouchOperation("marker", "includes/ENABLE_INSTALL_TOOL").Execute(ctx, th.FileSystem())
		if res.Kind != core.KindFailed {
			t.Errorf("expected %s, got %s", core.KindFailed, res.Kind)
		}
	})
}
