// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"relcheck/internal/harness"
	"relcheck/internal/issue"
	"relcheck/internal/plan"
	"relcheck/internal/probe"
)

func TestRenderMatrixNamesEveryPhase(t *testing.T) {
	p := plan.Default()
	phases := plan.Matrix([]string{"8", "9"})

	out := renderMatrix(p, phases)
	for _, want := range []string{
		"8 standalone",
		"9 standalone",
		"all versions together",
		"standalone artifacts",
		"net8.0",
		"net9.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("matrix output missing %q:\n%s", want, out)
		}
	}
}

func TestExitCodeForPropagatesProbeScriptCode(t *testing.T) {
	scriptErr := &probe.ScriptError{Path: "other_tests/50-check.sh", ExitCode: 7}
	stepErr := &harness.StepError{
		Phase: "8 standalone",
		Step:  "probes (8)",
		Kind:  harness.ErrExternalTool,
		Err:   scriptErr,
	}
	if got := exitCodeFor(stepErr); got != 7 {
		t.Fatalf("expected exit code 7, got %d", got)
	}
}

func TestExitCodeForDefaultsToOne(t *testing.T) {
	if got := exitCodeFor(errors.New("plain failure")); got != 1 {
		t.Fatalf("expected exit code 1, got %d", got)
	}
}

func TestExitErrorMessage(t *testing.T) {
	e := &ExitError{Code: 3}
	if e.Error() != "exit status 3" {
		t.Fatalf("unexpected message %q", e.Error())
	}

	wrapped := &ExitError{Code: 1, Err: errors.New("boom")}
	if wrapped.Error() != "boom" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Fatal("ExitError must unwrap to its cause")
	}
}

func TestIssueForMapsFailureClasses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"probe script", &harness.StepError{Kind: harness.ErrExternalTool,
			Err: &probe.ScriptError{Path: "x", ExitCode: 2}}, issue.ProbeFailedId},
		{"timeout", &harness.StepError{Kind: harness.ErrTimeout}, issue.ReadinessTimeoutId},
		{"assertion", &harness.StepError{Kind: harness.ErrAssertion}, issue.OutputMismatchId},
		{"precondition", &harness.StepError{Kind: harness.ErrPrecondition}, issue.PackagesNotFoundId},
		{"external tool", &harness.StepError{Kind: harness.ErrExternalTool}, issue.ToolchainFailedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guide := issueFor(tt.err)
			if guide == nil {
				t.Fatal("expected a catalog entry")
			}
			if guide.Id() != tt.want {
				t.Fatalf("issueFor = %d, want %d", guide.Id(), tt.want)
			}
		})
	}

	if issueFor(errors.New("unclassified")) != nil {
		t.Fatal("unclassified errors have no catalog entry")
	}
}

func TestGetVersionString(t *testing.T) {
	if !strings.Contains(getVersionString(), "dev") {
		t.Fatalf("dev build must be labeled, got %q", getVersionString())
	}
}
