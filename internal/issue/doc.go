// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// It defines error types that carry remediation steps plus a catalog of
// Markdown-formatted guidance for the failure classes an acceptance run can
// hit, improving the experience when a release check aborts.
package issue
