// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"relcheck/internal/pkgset"
	"relcheck/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [version...]",
	Short: "Show the phase matrix without running it",
	Long: `Resolve the release plan, enumerate available package versions and
print the acceptance matrix that "relcheck run" would execute.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(planFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	versions := args
	if len(versions) == 0 {
		set, err := pkgset.Enumerate(p.Packages)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}
		versions = set.Versions()
	}
	if len(versions) == 0 {
		fmt.Println(WarningStyle.Render("No package versions found; showing an example matrix for major 8"))
		versions = []string{"8"}
	}

	fmt.Print(renderMatrix(p, plan.Matrix(versions)))
	return nil
}

// renderMatrix formats the phase matrix for display.
func renderMatrix(p *plan.Plan, phases []plan.Phase) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Acceptance matrix") + "\n")
	for i, ph := range phases {
		b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, PhaseStyle.Render(ph.Name)))
		if ph.Standalone {
			b.WriteString(SubtitleStyle.Render("    uninstall everything, re-run published standalone artifacts") + "\n")
			continue
		}
		for _, v := range p.Versions(ph.Test) {
			b.WriteString(SubtitleStyle.Render(fmt.Sprintf("    test %s (%s)", v.Major, v.Framework)) + "\n")
		}
	}
	return b.String()
}
