// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"os"
	"testing"
)

func TestEnvScopeRestoresPreviousValue(t *testing.T) {
	t.Setenv("RELCHECK_SCOPE_TEST", "original")

	scope := NewEnvScope()
	if err := scope.Set("RELCHECK_SCOPE_TEST", "override"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := os.Getenv("RELCHECK_SCOPE_TEST"); got != "override" {
		t.Fatalf("expected override, got %q", got)
	}

	if err := scope.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := os.Getenv("RELCHECK_SCOPE_TEST"); got != "original" {
		t.Fatalf("expected original value restored, got %q", got)
	}
}

func TestEnvScopeUnsetsPreviouslyUnsetVariable(t *testing.T) {
	const key = "RELCHECK_SCOPE_UNSET_TEST"
	os.Unsetenv(key)

	scope := NewEnvScope()
	if err := scope.Set(key, "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := scope.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, ok := os.LookupEnv(key); ok {
		t.Fatal("expected variable to be unset after Restore")
	}
}

func TestEnvScopeFirstTouchWins(t *testing.T) {
	t.Setenv("RELCHECK_SCOPE_MULTI", "first")

	scope := NewEnvScope()
	scope.Set("RELCHECK_SCOPE_MULTI", "second")
	scope.Set("RELCHECK_SCOPE_MULTI", "third")

	if err := scope.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := os.Getenv("RELCHECK_SCOPE_MULTI"); got != "first" {
		t.Fatalf("expected first value restored, got %q", got)
	}
}

func TestEnvScopeRestoreIsIdempotent(t *testing.T) {
	t.Setenv("RELCHECK_SCOPE_IDEM", "keep")

	scope := NewEnvScope()
	scope.Set("RELCHECK_SCOPE_IDEM", "temp")
	scope.Restore()

	os.Setenv("RELCHECK_SCOPE_IDEM", "changed-out-of-band")
	if err := scope.Restore(); err != nil {
		t.Fatalf("second Restore failed: %v", err)
	}
	if got := os.Getenv("RELCHECK_SCOPE_IDEM"); got != "changed-out-of-band" {
		t.Fatalf("second Restore must be a no-op, got %q", got)
	}
}
