// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"relcheck/internal/config"
	"relcheck/internal/harness"
	"relcheck/internal/issue"
	"relcheck/internal/pkgset"
	"relcheck/internal/plan"
	"relcheck/internal/probe"
	"relcheck/internal/supervise"
)

var (
	// skipPackages disables package manager actions, for unprivileged runs.
	skipPackages bool
	// keepWorkspace skips the workspace reset, for debugging in place.
	keepWorkspace bool
	// workspaceDir is the checkout holding the sample solution.
	workspaceDir string

	runCmd = &cobra.Command{
		Use:   "run [version...]",
		Short: "Run the acceptance matrix",
		Long: `Run the full acceptance matrix against the packaged release.

With no arguments every major version found in the package directory is
tested. With explicit versions the matrix covers only those.

Exit code 0 means every phase passed. On failure the exit code is the
first failing step's code and the failure names the phase, the step and
the expected versus actual value.`,
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().BoolVar(&skipPackages, "skip-packages", false, "skip package manager actions (unprivileged smoke run)")
	runCmd.Flags().BoolVar(&keepWorkspace, "keep-workspace", false, "skip the workspace reset between phases")
	runCmd.Flags().StringVarP(&workspaceDir, "workspace", "w", ".", "workspace directory holding the sample solution")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	p, err := plan.Load(planFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	set, err := pkgset.Enumerate(p.Packages)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	versions := args
	if len(versions) == 0 {
		versions = set.Versions()
	}
	if len(versions) == 0 {
		err := fmt.Errorf("no package versions found in %s", p.Packages.Dir)
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return &ExitError{Code: 1, Err: err}
	}
	if err := validateVersions(versions, set, p.Packages.Dir); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return &ExitError{Code: 1, Err: err}
	}

	deps := harness.Deps{
		Workspace: harness.NewWorkspace(workspaceDir, keepWorkspace, os.Stderr),
		Probes:    newProbeRunner(cfg, p),
		Server:    supervise.New(p.Supervise, os.Stderr),
		Toolchain: harness.NewToolchain(p, workspaceDir, os.Stdout, os.Stderr),
	}
	if !skipPackages {
		deps.Packages = set
		deps.Manager = pkgset.NewEopkg(cfg.Sudo, os.Stdout, os.Stderr)
	}

	driver := harness.New(p, deps, os.Stderr)
	phases := plan.Matrix(versions)

	fmt.Println(TitleStyle.Render("relcheck") + SubtitleStyle.Render(fmt.Sprintf(" - %d phases, versions %v", len(phases), versions)))
	fmt.Print(renderAnalysis(set))

	if err := driver.Run(cmd.Context(), phases); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("FAILED: ")+formatErrorForDisplay(err, verbose))
		printGuidance(err, cfg)
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}

	fmt.Println(SuccessStyle.Render("PASSED: ") + fmt.Sprintf("all %d phases", len(phases)))
	return nil
}

// newProbeRunner builds the probe set: built-ins first, then scripts
// discovered in the plan's probe directory, executed through the configured
// runtime.
func newProbeRunner(cfg *config.Config, p *plan.Plan) *probe.Runner {
	var rt probe.ScriptRuntime
	if cfg.ProbeRuntime == config.ProbeRuntimeVirtual {
		rt = probe.NewVirtualRuntime()
	} else {
		rt = probe.NewNativeRuntime()
	}

	r := probe.NewRunner(p.Probes.Dir, rt, os.Stdout, os.Stderr)
	r.Register("permissions", probe.Permissions(p.Permissions))
	r.Register("host-trace", probe.HostTrace(p.HostTrace))
	return r
}

// validateVersions checks every requested version against the enumerated
// package set, naming the available versions on a miss.
func validateVersions(versions []string, set *pkgset.Set, dir string) error {
	for _, v := range versions {
		if !set.HasVersion(v) {
			return fmt.Errorf("version %s has no packages in %s (available versions: %s)",
				v, dir, strings.Join(set.Versions(), ", "))
		}
	}
	return nil
}

// renderAnalysis formats the package analysis banner shown before the first
// phase: the shared group first, then each version's runtime and SDK counts.
func renderAnalysis(set *pkgset.Set) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Package analysis") + "\n")
	for _, g := range set.Analysis() {
		if g.IsShared {
			b.WriteString("  " + PhaseStyle.Render("shared") +
				SubtitleStyle.Render(fmt.Sprintf(" %d packages", g.Runtime)) + "\n")
			continue
		}
		b.WriteString("  " + PhaseStyle.Render(g.Version) +
			SubtitleStyle.Render(fmt.Sprintf(" %d runtime, %d sdk", g.Runtime, g.SDK)) + "\n")
	}
	return b.String()
}

// printGuidance renders the catalog entry matching the failure class, when
// one exists.
func printGuidance(err error, cfg *config.Config) {
	guide := issueFor(err)
	if guide == nil {
		return
	}

	style := "dark"
	if cfg.UI.ColorScheme == config.ColorSchemeLight {
		style = "light"
	}
	if md, rerr := guide.Render(style); rerr == nil {
		fmt.Fprint(os.Stderr, md)
	}
}

// issueFor maps a run failure onto the issue catalog.
func issueFor(err error) *issue.Issue {
	var scriptErr *probe.ScriptError
	switch {
	case errors.As(err, &scriptErr):
		return issue.Get(issue.ProbeFailedId)
	case errors.Is(err, harness.ErrTimeout):
		return issue.Get(issue.ReadinessTimeoutId)
	case errors.Is(err, harness.ErrAssertion):
		return issue.Get(issue.OutputMismatchId)
	case errors.Is(err, harness.ErrPrecondition):
		return issue.Get(issue.PackagesNotFoundId)
	case errors.Is(err, harness.ErrExternalTool):
		return issue.Get(issue.ToolchainFailedId)
	}
	return nil
}

// exitCodeFor maps a run failure to the process exit code. A failing probe
// script's own exit code is propagated exactly.
func exitCodeFor(err error) int {
	var scriptErr *probe.ScriptError
	if errors.As(err, &scriptErr) && scriptErr.ExitCode > 0 {
		return scriptErr.ExitCode
	}
	var execErr *exec.ExitError
	if errors.As(err, &execErr) && execErr.ExitCode() > 0 {
		return execErr.ExitCode()
	}
	return 1
}
