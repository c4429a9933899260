// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"fmt"
	"strings"
)

// Phase is one cell of the acceptance matrix: a set of co-installed versions
// and the versions exercised against that set. The final phase of every
// matrix removes all packages and re-verifies published standalone artifacts.
type Phase struct {
	// Name identifies the phase in output and failure messages.
	Name string
	// Install lists the major versions installed for this phase, in install
	// order. Shared base packages are always installed first by the driver.
	Install []string
	// Test lists the versions exercised. Every entry must be in Install.
	Test []string
	// Standalone marks the terminal phase: uninstall everything and re-run
	// previously published self-contained artifacts.
	Standalone bool
}

// Validate enforces the phase invariant: every tested version is installed.
func (ph Phase) Validate() error {
	if ph.Standalone {
		return nil
	}
	installed := make(map[string]bool, len(ph.Install))
	for _, v := range ph.Install {
		installed[v] = true
	}
	for _, v := range ph.Test {
		if !installed[v] {
			return fmt.Errorf("phase %q tests version %s which is not installed", ph.Name, v)
		}
	}
	return nil
}

// Matrix builds the acceptance matrix for the requested versions:
//
//  1. each version standalone
//  2. all versions co-installed (when more than one)
//  3. every pair co-installed (when more than two)
//  4. a terminal phase with everything removed, re-verifying published
//     self-contained artifacts
//
// Co-installation phases prove that artifacts for every installed version
// remain resolvable simultaneously.
func Matrix(versions []string) []Phase {
	var phases []Phase

	for _, v := range versions {
		phases = append(phases, Phase{
			Name:    fmt.Sprintf("%s standalone", v),
			Install: []string{v},
			Test:    []string{v},
		})
	}

	if len(versions) > 1 {
		phases = append(phases, Phase{
			Name:    fmt.Sprintf("all versions together (%s)", strings.Join(versions, ", ")),
			Install: append([]string(nil), versions...),
			Test:    append([]string(nil), versions...),
		})
	}

	if len(versions) > 2 {
		for i := 0; i < len(versions); i++ {
			for j := i + 1; j < len(versions); j++ {
				pair := []string{versions[i], versions[j]}
				phases = append(phases, Phase{
					Name:    fmt.Sprintf("pair %s and %s", pair[0], pair[1]),
					Install: pair,
					Test:    append([]string(nil), pair...),
				})
			}
		}
	}

	phases = append(phases, Phase{
		Name:       "standalone artifacts, no runtime installed",
		Standalone: true,
	})

	return phases
}
