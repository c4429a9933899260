// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"relcheck/internal/plan"
)

// Toolchain runs the external build tool against the sample solution,
// expanding the plan's argument templates for the version under test.
type Toolchain struct {
	// Dir is the working directory for every invocation.
	Dir string
	// Stdout and Stderr receive the tool's output.
	Stdout io.Writer
	Stderr io.Writer

	plan   *plan.Plan
	logger *log.Logger
}

// NewToolchain creates a toolchain bound to the plan's command templates.
func NewToolchain(p *plan.Plan, dir string, stdout, stderr io.Writer) *Toolchain {
	return &Toolchain{
		Dir:    dir,
		Stdout: stdout,
		Stderr: stderr,
		plan:   p,
		logger: log.NewWithOptions(stderr, log.Options{Prefix: "toolchain"}),
	}
}

// Build compiles the solution for the given version.
func (tc *Toolchain) Build(ctx context.Context, v plan.VersionSpec) error {
	return tc.run(ctx, tc.plan.ExpandArgs(tc.plan.Toolchain.BuildArgs, v))
}

// Publish produces the self-contained single-file artifact for the given
// version.
func (tc *Toolchain) Publish(ctx context.Context, v plan.VersionSpec) error {
	return tc.run(ctx, tc.plan.ExpandArgs(tc.plan.Toolchain.PublishArgs, v))
}

func (tc *Toolchain) run(ctx context.Context, args []string) error {
	tc.logger.Info("running toolchain", "command", tc.plan.Toolchain.Command, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, tc.plan.Toolchain.Command, args...)
	cmd.Dir = tc.Dir
	cmd.Stdout = tc.Stdout
	cmd.Stderr = tc.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", tc.plan.Toolchain.Command, strings.Join(args, " "), err)
	}
	return nil
}

// CaptureOutput runs an executable and returns its trimmed standard output.
// Used for console artifacts whose stdout is asserted against a literal.
func (tc *Toolchain) CaptureOutput(ctx context.Context, path string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path)
	cmd.Dir = tc.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = tc.Stderr
	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), fmt.Errorf("%s: %w", path, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
