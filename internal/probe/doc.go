// SPDX-License-Identifier: MPL-2.0

// Package probe runs independent checks against an installed release.
//
// A probe contributes one pass/fail verdict. Built-in probes are Go
// functions registered at startup and run in registration order; external
// probes are executable files discovered in a directory and invoked as
// `probe <version>`. Exit 0 means pass, non-zero means fail, and
// non-executable directory entries are skipped with a warning.
package probe
