// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"relcheck/internal/config"
	"relcheck/internal/plan"
)

var (
	// probeDir overrides the plan's probe script directory.
	probeDir string
	// listProbes lists the probe set instead of running it.
	listProbes bool

	probesCmd = &cobra.Command{
		Use:   "probes [version]",
		Short: "Run the probe set standalone",
		Long: `Run the probe set against an installed version, without the full
matrix: the built-in permissions and host-resolution probes first, then
executable scripts discovered in the probe directory, invoked as
"probe <version>".

A failing probe script's exit code becomes the process exit code, exactly
as under "relcheck run". With --list the probes are shown instead of run;
non-executable entries are marked and skipped at run time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProbes,
	}
)

func init() {
	probesCmd.Flags().StringVar(&probeDir, "dir", "", "probe script directory (overrides the plan)")
	probesCmd.Flags().BoolVarP(&listProbes, "list", "l", false, "list the probe set instead of running it")
}

func runProbes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	p, err := plan.Load(planFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}
	if probeDir != "" {
		p.Probes.Dir = probeDir
	}

	if listProbes {
		return listProbeSet(cfg, p)
	}
	if len(args) == 0 {
		return fmt.Errorf("a version argument is required (or use --list to show the probe set)")
	}

	return runProbeSet(cmd.Context(), cfg, p, args[0])
}

// runProbeSet executes the full probe set for one version, mirroring the
// failure reporting and exit code semantics of "relcheck run".
func runProbeSet(ctx context.Context, cfg *config.Config, p *plan.Plan, version string) error {
	runner := newProbeRunner(cfg, p)

	if err := runner.RunAll(ctx, version); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("FAILED: ")+formatErrorForDisplay(err, verbose))
		printGuidance(err, cfg)
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}

	fmt.Println(SuccessStyle.Render("PASSED: ") + fmt.Sprintf("all probes for version %s", version))
	return nil
}

// listProbeSet shows the probes a run would execute.
func listProbeSet(cfg *config.Config, p *plan.Plan) error {
	runner := newProbeRunner(cfg, p)

	fmt.Println(TitleStyle.Render("Built-in probes"))
	for _, b := range runner.Builtins() {
		fmt.Println("  " + PhaseStyle.Render(b.Name))
	}

	fmt.Println(TitleStyle.Render("Probe scripts") + SubtitleStyle.Render(" ("+p.Probes.Dir+")"))
	entries, err := os.ReadDir(p.Probes.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println(SubtitleStyle.Render("  (directory does not exist)"))
			return nil
		}
		return &ExitError{Code: 1, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(p.Probes.Dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if info.Mode().Perm()&0o111 == 0 {
			fmt.Println("  " + WarningStyle.Render(path) + SubtitleStyle.Render(" (not executable, skipped)"))
			continue
		}
		fmt.Println("  " + PhaseStyle.Render(path))
	}
	return nil
}
