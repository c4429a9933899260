// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ScriptRuntime executes a discovered probe script and reports its exit code.
type ScriptRuntime interface {
	// Name returns the runtime name for logging.
	Name() string
	// Run executes the script at path with the given arguments.
	Run(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (int, error)
}

// NativeRuntime executes probe scripts directly as host processes.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return "native"
}

// Run executes the probe as a child process.
func (r *NativeRuntime) Run(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to execute probe: %w", err)
	}
	return 0, nil
}

// VirtualRuntime executes shell probe scripts in the embedded mvdan/sh
// interpreter. Useful on hosts without a usable /bin/sh, or to keep probe
// behavior identical across platforms. Non-shell scripts fall back to
// native execution.
type VirtualRuntime struct {
	native *NativeRuntime
}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{native: NewNativeRuntime()}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Run interprets a .sh probe in-process; anything else runs natively.
func (r *VirtualRuntime) Run(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (int, error) {
	if !strings.HasSuffix(path, ".sh") {
		return r.native.Run(ctx, path, args, stdout, stderr)
	}

	script, err := os.ReadFile(path)
	if err != nil {
		return 1, fmt.Errorf("failed to read probe script: %w", err)
	}

	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(string(script)), path)
	if err != nil {
		return 1, fmt.Errorf("probe script syntax error: %w", err)
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
	}

	// Prepend "--" so version strings starting with "-" are not taken for
	// shell options by interp.Params().
	if len(args) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, args...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return 1, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return int(exitStatus), nil
		}
		return 1, fmt.Errorf("probe script execution failed: %w", err)
	}
	return 0, nil
}
