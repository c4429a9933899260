// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestRunnerBuiltinsRunInRegistrationOrder(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(t.TempDir(), NewVirtualRuntime(), &out, &out)

	var order []string
	r.Register("first", func(ctx context.Context, version string) error {
		order = append(order, "first:"+version)
		return nil
	})
	r.Register("second", func(ctx context.Context, version string) error {
		order = append(order, "second:"+version)
		return nil
	})

	if err := r.RunAll(context.Background(), "9"); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "first:9" || order[1] != "second:9" {
		t.Fatalf("unexpected execution order: %v", order)
	}
}

func TestRunnerStopsAtFirstBuiltinFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(t.TempDir(), NewVirtualRuntime(), &out, &out)

	boom := errors.New("boom")
	ran := false
	r.Register("failing", func(ctx context.Context, version string) error { return boom })
	r.Register("after", func(ctx context.Context, version string) error {
		ran = true
		return nil
	})

	err := r.RunAll(context.Background(), "9")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped builtin error, got %v", err)
	}
	if ran {
		t.Fatal("probes after the first failure must not run")
	}
}

func TestRunnerDiscoversScriptsAndPassesVersion(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	writeScript(t, dir, "10-check.sh", "echo \"$1\" > "+marker, 0o755)

	var out bytes.Buffer
	r := NewRunner(dir, NewVirtualRuntime(), &out, &out)
	if err := r.RunAll(context.Background(), "8"); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("script did not run: %v", err)
	}
	if got := string(data); got != "8\n" {
		t.Fatalf("script received wrong version argument: %q", got)
	}
}

func TestRunnerSkipsNonExecutableEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	writeScript(t, dir, "notes.sh", "exit 1", 0o644)

	var out bytes.Buffer
	r := NewRunner(dir, NewVirtualRuntime(), &out, &out)
	if err := r.RunAll(context.Background(), "8"); err != nil {
		t.Fatalf("non-executable entry must be skipped, got %v", err)
	}
}

func TestRunnerPropagatesScriptExitCode(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "exit 42", 0o755)

	var out bytes.Buffer
	r := NewRunner(dir, NewVirtualRuntime(), &out, &out)
	err := r.RunAll(context.Background(), "8")

	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if scriptErr.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", scriptErr.ExitCode)
	}
}

func TestRunnerMissingDirectoryIsNotAFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"), NewVirtualRuntime(), &out, &out)
	if err := r.RunAll(context.Background(), "8"); err != nil {
		t.Fatalf("missing probe directory must be skipped, got %v", err)
	}
}

func TestRunnerScriptsRunInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "order.log")
	writeScript(t, dir, "20-second.sh", "echo second >> "+log, 0o755)
	writeScript(t, dir, "10-first.sh", "echo first >> "+log, 0o755)

	var out bytes.Buffer
	r := NewRunner(dir, NewVirtualRuntime(), &out, &out)
	if err := r.RunAll(context.Background(), "8"); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("order log missing: %v", err)
	}
	if got := string(data); got != "first\nsecond\n" {
		t.Fatalf("scripts ran out of order: %q", got)
	}
}
