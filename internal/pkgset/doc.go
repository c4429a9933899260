// SPDX-License-Identifier: MPL-2.0

// Package pkgset enumerates built package files and applies install/remove
// actions through an external package manager.
//
// The harness never implements package management itself; it shells out to
// the system tool (eopkg on Solus) and only tracks which version groups
// exist. The standard idiom for every phase is uninstall-all-then-install-
// selected, with shared base packages always installed first.
package pkgset
