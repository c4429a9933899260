// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition reports a required directory, package or file that is
	// absent before a step could even run.
	ErrPrecondition = errors.New("precondition missing")
	// ErrAssertion reports observed output that differs from the expected
	// literal.
	ErrAssertion = errors.New("assertion mismatch")
	// ErrTimeout reports a readiness marker that never appeared within its
	// bound.
	ErrTimeout = errors.New("timeout")
	// ErrExternalTool reports a package manager or toolchain invocation
	// that itself returned non-zero.
	ErrExternalTool = errors.New("external tool failure")
)

// StepError is a fatal step failure. It names the phase and step so the
// operator can see exactly what failed and, for assertions, what was
// expected against what was observed.
type StepError struct {
	Phase    string
	Step     string
	Expected string
	Actual   string
	Kind     error
	Err      error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("phase %q, step %s: %v", e.Phase, e.Step, e.Kind)
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(": expected %q, got %q", e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the failure class sentinel and the underlying cause
// to errors.Is / errors.As.
func (e *StepError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
