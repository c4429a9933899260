// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"relcheck/internal/pkgset"
	"relcheck/internal/plan"
	"relcheck/internal/supervise"
)

type (
	// ProbeRunner runs the probe set for one version under test.
	ProbeRunner interface {
		RunAll(ctx context.Context, version string) error
	}

	// ServeChecker supervises one served artifact through readiness and a
	// liveness check.
	ServeChecker interface {
		Check(ctx context.Context, command []string, workdir string, art plan.Artifact) error
	}

	// Deps are the driver's collaborators. All of them are required except
	// Packages and Manager, which may be nil when package steps are skipped.
	Deps struct {
		Workspace *Workspace
		Packages  *pkgset.Set
		Manager   pkgset.Manager
		Probes    ProbeRunner
		Server    ServeChecker
		Toolchain *Toolchain
	}

	// Driver iterates the acceptance matrix, orchestrating package actions,
	// probes, builds and artifact checks for each phase. Any step failure
	// aborts the whole run.
	Driver struct {
		plan   *plan.Plan
		deps   Deps
		logger *log.Logger
	}
)

// New creates a driver over the given plan and collaborators.
func New(p *plan.Plan, deps Deps, stderr io.Writer) *Driver {
	return &Driver{
		plan:   p,
		deps:   deps,
		logger: log.NewWithOptions(stderr, log.Options{Prefix: "harness"}),
	}
}

// Run executes every phase of the matrix in order, stopping at the first
// failure.
func (d *Driver) Run(ctx context.Context, phases []plan.Phase) error {
	for i, ph := range phases {
		if err := ph.Validate(); err != nil {
			return &StepError{Phase: ph.Name, Step: "validate", Kind: ErrPrecondition, Err: err}
		}

		d.logger.Info("phase start", "phase", ph.Name, "index", i+1, "total", len(phases))
		if err := d.runPhase(ctx, ph); err != nil {
			d.logger.Error("phase failed", "phase", ph.Name, "err", err)
			return err
		}
		d.logger.Info("phase passed", "phase", ph.Name)
	}

	d.logger.Info("all phases passed", "count", len(phases))
	return nil
}

func (d *Driver) runPhase(ctx context.Context, ph plan.Phase) error {
	if ph.Standalone {
		return d.runStandalone(ctx, ph)
	}

	if err := d.deps.Workspace.Reset(ctx); err != nil {
		return &StepError{Phase: ph.Name, Step: "workspace reset", Kind: ErrExternalTool, Err: err}
	}

	if err := d.applyPackages(ctx, ph, ph.Install); err != nil {
		return err
	}

	for _, major := range ph.Test {
		if err := d.testVersion(ctx, ph, d.plan.Version(major)); err != nil {
			return err
		}
	}
	return nil
}

// applyPackages brings the installed set to exactly the phase's versions:
// uninstall everything the package set knows about, then install the
// selected versions with shared base packages first.
func (d *Driver) applyPackages(ctx context.Context, ph plan.Phase, install []string) error {
	if d.deps.Manager == nil || d.deps.Packages == nil {
		d.logger.Debug("package steps skipped", "phase", ph.Name)
		return nil
	}

	// Removal is best effort: on a fresh machine nothing is installed yet
	// and the package manager reports that as an error.
	if names := d.deps.Packages.RemoveNames(); len(names) > 0 {
		if err := d.deps.Manager.Remove(ctx, names); err != nil {
			d.logger.Warn("uninstall-all reported an error, continuing", "err", err)
		}
	}

	if len(install) == 0 {
		return nil
	}

	files, err := d.deps.Packages.FilesFor(install)
	if err != nil {
		return &StepError{Phase: ph.Name, Step: "select packages", Kind: ErrPrecondition, Err: err}
	}
	if err := d.deps.Manager.InstallFiles(ctx, files); err != nil {
		return &StepError{Phase: ph.Name, Step: "install packages", Kind: ErrExternalTool, Err: err}
	}
	return nil
}

// testVersion runs the full step sequence for one version under test:
// probes, build, publish, console assertion, served artifacts.
func (d *Driver) testVersion(ctx context.Context, ph plan.Phase, v plan.VersionSpec) error {
	d.logger.Info("testing version", "major", v.Major, "framework", v.Framework)

	if err := d.deps.Probes.RunAll(ctx, v.Major); err != nil {
		return &StepError{Phase: ph.Name, Step: fmt.Sprintf("probes (%s)", v.Major), Kind: classify(err), Err: err}
	}

	if err := d.deps.Toolchain.Build(ctx, v); err != nil {
		return &StepError{Phase: ph.Name, Step: fmt.Sprintf("build %s", v.Framework), Kind: ErrExternalTool, Err: err}
	}
	if err := d.deps.Toolchain.Publish(ctx, v); err != nil {
		return &StepError{Phase: ph.Name, Step: fmt.Sprintf("publish %s", v.Framework), Kind: ErrExternalTool, Err: err}
	}

	for _, art := range d.plan.Artifacts {
		if art.Kind != plan.ArtifactConsole {
			continue
		}
		if err := d.checkConsole(ctx, ph, expandArtifact(d.plan, art, v)); err != nil {
			return err
		}
	}

	for _, art := range d.plan.Artifacts {
		if art.Kind != plan.ArtifactServed {
			continue
		}
		if err := d.checkServed(ctx, ph, expandArtifact(d.plan, art, v)); err != nil {
			return err
		}
	}
	return nil
}

// checkConsole runs a console artifact and asserts its stdout.
func (d *Driver) checkConsole(ctx context.Context, ph plan.Phase, art plan.Artifact) error {
	step := fmt.Sprintf("console artifact %s", art.Name)

	if _, err := os.Stat(d.resolve(art.Path)); err != nil {
		return &StepError{Phase: ph.Name, Step: step, Kind: ErrPrecondition, Err: err}
	}

	out, err := d.deps.Toolchain.CaptureOutput(ctx, art.Path)
	if err != nil {
		return &StepError{Phase: ph.Name, Step: step, Kind: ErrExternalTool, Err: err}
	}
	if out != art.Expect {
		return &StepError{Phase: ph.Name, Step: step, Kind: ErrAssertion, Expected: art.Expect, Actual: out}
	}
	return nil
}

// checkServed hands a server artifact to the supervisor.
func (d *Driver) checkServed(ctx context.Context, ph plan.Phase, art plan.Artifact) error {
	step := fmt.Sprintf("served artifact %s", art.Name)

	if _, err := os.Stat(d.resolve(art.Path)); err != nil {
		return &StepError{Phase: ph.Name, Step: step, Kind: ErrPrecondition, Err: err}
	}

	if err := d.deps.Server.Check(ctx, []string{art.Path}, d.deps.Workspace.Dir, art); err != nil {
		se := &StepError{Phase: ph.Name, Step: step, Kind: classify(err), Err: err}
		var respErr *supervise.ResponseError
		if errors.As(err, &respErr) {
			se.Expected = respErr.Want
			se.Actual = respErr.Got
		}
		return se
	}
	return nil
}

// runStandalone is the terminal phase: with every package removed, the
// previously published self-contained artifacts must still run.
func (d *Driver) runStandalone(ctx context.Context, ph plan.Phase) error {
	if err := d.applyPackages(ctx, ph, nil); err != nil {
		return err
	}

	pattern := d.resolve(d.plan.Expand(d.plan.Standalone.Glob, plan.VersionSpec{}))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return &StepError{Phase: ph.Name, Step: "locate standalone artifacts", Kind: ErrPrecondition, Err: err}
	}
	if len(matches) == 0 {
		return &StepError{
			Phase: ph.Name,
			Step:  "locate standalone artifacts",
			Kind:  ErrPrecondition,
			Err:   fmt.Errorf("no published artifacts match %s", pattern),
		}
	}

	for _, path := range matches {
		step := fmt.Sprintf("standalone artifact %s", path)
		if major := d.plan.MajorFromPath(path); major != "" {
			d.logger.Info("verifying standalone artifact", "path", path, "major", major)
		} else {
			d.logger.Info("verifying standalone artifact", "path", path)
		}

		out, err := d.deps.Toolchain.CaptureOutput(ctx, path)
		if err != nil {
			return &StepError{Phase: ph.Name, Step: step, Kind: ErrExternalTool, Err: err}
		}
		if out != d.plan.Standalone.Expect {
			return &StepError{Phase: ph.Name, Step: step, Kind: ErrAssertion, Expected: d.plan.Standalone.Expect, Actual: out}
		}
	}
	return nil
}

// resolve anchors a relative artifact path at the workspace root.
func (d *Driver) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.deps.Workspace.Dir, path)
}

// expandArtifact substitutes the version's placeholders into an artifact's
// path template.
func expandArtifact(p *plan.Plan, art plan.Artifact, v plan.VersionSpec) plan.Artifact {
	art.Path = p.Expand(art.Path, v)
	return art
}

// classify maps collaborator errors onto the failure taxonomy.
func classify(err error) error {
	var readyErr *supervise.ReadinessError
	if errors.As(err, &readyErr) {
		return ErrTimeout
	}
	var respErr *supervise.ResponseError
	if errors.As(err, &respErr) {
		return ErrAssertion
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrExternalTool
}
