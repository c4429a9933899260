// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package harness

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relcheck/internal/plan"
	"relcheck/internal/testutil"
)

func TestToolchainExpandsArgumentTemplates(t *testing.T) {
	dir := t.TempDir()
	argLog := filepath.Join(dir, "args.log")
	tool := filepath.Join(dir, "faketool")
	testutil.MustWriteFile(t, tool, []byte("#!/bin/sh\necho \"$@\" > "+argLog+"\n"), 0o755)

	p := plan.Default()
	p.Toolchain.Command = tool
	p.Toolchain.BuildArgs = []string{"build", "-p:framework={framework}", "-c", "{configuration}", "-r", "{rid}"}

	tc := NewToolchain(p, dir, io.Discard, io.Discard)
	if err := tc.Build(context.Background(), p.Version("8")); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data := readFile(t, argLog)
	for _, want := range []string{"net8.0", "Release", "solus.4-x64"} {
		if !strings.Contains(data, want) {
			t.Fatalf("expanded args %q missing %q", data, want)
		}
	}
	if strings.Contains(data, "{") {
		t.Fatalf("unexpanded placeholder left in args: %q", data)
	}
}

func TestToolchainReportsNonZeroExit(t *testing.T) {
	p := plan.Default()
	p.Toolchain.Command = "false"

	tc := NewToolchain(p, t.TempDir(), io.Discard, io.Discard)
	if err := tc.Build(context.Background(), p.Version("8")); err == nil {
		t.Fatal("expected error for failing toolchain")
	}
}

func TestCaptureOutputTrimsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "console")
	testutil.MustWriteFile(t, bin, []byte("#!/bin/sh\necho SUCCESS\n"), 0o755)

	p := plan.Default()
	tc := NewToolchain(p, dir, io.Discard, io.Discard)
	out, err := tc.CaptureOutput(context.Background(), bin)
	if err != nil {
		t.Fatalf("CaptureOutput failed: %v", err)
	}
	if out != "SUCCESS" {
		t.Fatalf("expected trimmed SUCCESS, got %q", out)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
