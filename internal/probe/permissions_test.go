// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relcheck/internal/plan"
)

func permissionsFixture(t *testing.T) (string, plan.PermissionsConfig) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "install-root")

	mustMkdir := func(path string) {
		t.Helper()
		if err := os.MkdirAll(path, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.Chmod(path, 0o755); err != nil {
			t.Fatalf("chmod %s: %v", path, err)
		}
	}
	mustWrite := func(path string, mode os.FileMode) {
		t.Helper()
		if err := os.WriteFile(path, []byte("x"), mode); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		if err := os.Chmod(path, mode); err != nil {
			t.Fatalf("chmod %s: %v", path, err)
		}
	}

	mustMkdir(root)
	mustMkdir(filepath.Join(root, "shared"))
	mustWrite(filepath.Join(root, "hostbin"), 0o755)
	mustWrite(filepath.Join(root, "shared", "libnative.so"), 0o755)
	mustWrite(filepath.Join(root, "shared", "api.h"), 0o644)

	cfg := plan.PermissionsConfig{
		Root:         root,
		Owner:        os.Getuid(),
		BinaryMode:   0o755,
		DirMode:      0o755,
		HeaderMode:   0o644,
		HostBinaries: []string{"hostbin"},
	}
	return root, cfg
}

func TestPermissionsProbePassesOnConformingTree(t *testing.T) {
	_, cfg := permissionsFixture(t)
	if err := Permissions(cfg)(context.Background(), "9"); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestPermissionsProbeFailsOnWrongBinaryMode(t *testing.T) {
	root, cfg := permissionsFixture(t)
	bad := filepath.Join(root, "shared", "libnative.so")
	if err := os.Chmod(bad, 0o700); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	err := Permissions(cfg)(context.Background(), "9")
	if err == nil {
		t.Fatal("expected failure for wrong shared library mode")
	}
	if !strings.Contains(err.Error(), bad) {
		t.Fatalf("error must name the offending path, got %v", err)
	}
	if !strings.Contains(err.Error(), "0700") || !strings.Contains(err.Error(), "0755") {
		t.Fatalf("error must name actual and expected modes, got %v", err)
	}
}

func TestPermissionsProbeFailsOnWrongHeaderMode(t *testing.T) {
	root, cfg := permissionsFixture(t)
	if err := os.Chmod(filepath.Join(root, "shared", "api.h"), 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if err := Permissions(cfg)(context.Background(), "9"); err == nil {
		t.Fatal("expected failure for wrong header mode")
	}
}

func TestPermissionsProbeFailsOnMissingRoot(t *testing.T) {
	cfg := plan.PermissionsConfig{
		Root:       filepath.Join(t.TempDir(), "missing"),
		Owner:      os.Getuid(),
		BinaryMode: 0o755,
		DirMode:    0o755,
		HeaderMode: 0o644,
	}
	if err := Permissions(cfg)(context.Background(), "9"); err == nil {
		t.Fatal("expected failure when installation root is missing")
	}
}

func TestPermissionsProbeSkipsWhenUnconfigured(t *testing.T) {
	if err := Permissions(plan.PermissionsConfig{})(context.Background(), "9"); err != nil {
		t.Fatalf("unconfigured probe must be a no-op, got %v", err)
	}
}
