// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"relcheck/internal/testutil"
)

func TestWorkspaceResetRemovesUntrackedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	if out, err := exec.Command("git", "-C", dir, "init", "-q").CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\n%s", err, out)
	}

	tracked := filepath.Join(dir, "tracked.txt")
	testutil.MustWriteFile(t, tracked, []byte("keep"), 0o644)
	if out, err := exec.Command("git", "-C", dir, "add", "tracked.txt").CombinedOutput(); err != nil {
		t.Fatalf("git add failed: %v\n%s", err, out)
	}

	stray := filepath.Join(dir, "bin", "stray.o")
	testutil.MustMkdirAll(t, filepath.Dir(stray))
	testutil.MustWriteFile(t, stray, []byte("build output"), 0o644)

	w := NewWorkspace(dir, false, io.Discard)
	if err := w.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if _, err := os.Stat(stray); !os.IsNotExist(err) {
		t.Fatal("untracked build output must be removed")
	}
	if _, err := os.Stat(tracked); err != nil {
		t.Fatalf("tracked file must survive the reset: %v", err)
	}
}

func TestWorkspaceKeepSkipsReset(t *testing.T) {
	dir := t.TempDir()
	stray := filepath.Join(dir, "stray.o")
	testutil.MustWriteFile(t, stray, []byte("x"), 0o644)

	w := NewWorkspace(dir, true, io.Discard)
	if err := w.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := os.Stat(stray); err != nil {
		t.Fatal("keep mode must leave the workspace untouched")
	}
}
