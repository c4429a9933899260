// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"relcheck/internal/issue"
	"relcheck/internal/plan"
)

// HostTrace returns the built-in host-tracing probe. It enables the runtime
// host's trace output through environment variables, runs a diagnostic
// command, and asserts that the trace file was produced and contains the
// configured marker. The environment and the trace file are always cleaned
// up, whatever the outcome.
func HostTrace(cfg plan.HostTraceConfig) Func {
	return func(ctx context.Context, version string) (err error) {
		if len(cfg.Command) == 0 {
			return nil
		}

		traceFile := filepath.Join(os.TempDir(), fmt.Sprintf("relcheck-host-trace-%d.log", os.Getpid()))

		scope := NewEnvScope()
		if err := scope.Set(cfg.TraceVar, "1"); err != nil {
			return err
		}
		if err := scope.Set(cfg.TraceFileVar, traceFile); err != nil {
			scope.Restore()
			return err
		}
		defer func() {
			if rerr := scope.Restore(); rerr != nil && err == nil {
				err = rerr
			}
			os.Remove(traceFile)
		}()

		cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err != nil {
			return issue.NewErrorContext().
				WithOperation("run host diagnostic command").
				WithResource(strings.Join(cfg.Command, " ")).
				WithSuggestion("Verify the runtime host is on PATH for this release").
				Wrap(err).
				BuildError()
		}

		data, err := os.ReadFile(traceFile)
		if err != nil {
			return fmt.Errorf("host trace file was not produced at %s: %w", traceFile, err)
		}
		if !strings.Contains(string(data), cfg.Marker) {
			return fmt.Errorf("host trace at %s does not contain %q", traceFile, cfg.Marker)
		}
		return nil
	}
}
