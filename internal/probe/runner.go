// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

type (
	// Func is a built-in probe: it receives the version under test and
	// returns nil for pass.
	Func func(ctx context.Context, version string) error

	// Probe pairs a built-in probe function with its name.
	Probe struct {
		Name string
		Run  Func
	}

	// ScriptError reports a probe script that exited non-zero. The exit
	// code is propagated exactly to the harness exit status.
	ScriptError struct {
		Path     string
		ExitCode int
	}

	// Runner executes the probe set for a version: registered built-ins in
	// registration order, then executable scripts discovered in Dir. The
	// first failure aborts the aggregate.
	Runner struct {
		// Dir is scanned for external probe scripts. A missing directory
		// skips discovery without failing.
		Dir string
		// Runtime executes discovered scripts.
		Runtime ScriptRuntime
		// Stdout and Stderr receive probe output.
		Stdout io.Writer
		Stderr io.Writer

		builtins []Probe
		logger   *log.Logger
	}
)

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("probe %s failed with exit code %d", e.Path, e.ExitCode)
}

// NewRunner creates a probe runner over the given script directory.
func NewRunner(dir string, runtime ScriptRuntime, stdout, stderr io.Writer) *Runner {
	return &Runner{
		Dir:     dir,
		Runtime: runtime,
		Stdout:  stdout,
		Stderr:  stderr,
		logger:  log.NewWithOptions(stderr, log.Options{Prefix: "probe"}),
	}
}

// Register appends a built-in probe. Built-ins run before discovered
// scripts, in registration order.
func (r *Runner) Register(name string, fn Func) {
	r.builtins = append(r.builtins, Probe{Name: name, Run: fn})
}

// Builtins returns the registered built-in probes.
func (r *Runner) Builtins() []Probe {
	return append([]Probe(nil), r.builtins...)
}

// RunAll executes every probe for the given version, stopping at the first
// failure. Missing probe directories and non-executable entries are skipped,
// not failed.
func (r *Runner) RunAll(ctx context.Context, version string) error {
	for _, p := range r.builtins {
		r.logger.Info("running probe", "name", p.Name, "version", version)
		if err := p.Run(ctx, version); err != nil {
			return fmt.Errorf("probe %s: %w", p.Name, err)
		}
	}

	return r.runScripts(ctx, version)
}

// runScripts discovers and executes external probe scripts.
func (r *Runner) runScripts(ctx context.Context, version string) error {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("no probe directory found, skipping", "dir", r.Dir)
			return nil
		}
		return fmt.Errorf("failed to scan probe directory %s: %w", r.Dir, err)
	}

	// ReadDir sorts by name already; keep the sort explicit so the
	// execution order is a documented property, not an accident.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.Dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat probe %s: %w", path, err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			r.logger.Warn("skipping non-executable probe", "path", path)
			continue
		}

		r.logger.Info("running probe script", "path", path, "version", version)
		code, err := r.Runtime.Run(ctx, path, []string{version}, r.Stdout, r.Stderr)
		if err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}
		if code != 0 {
			return &ScriptError{Path: path, ExitCode: code}
		}
	}

	return nil
}
