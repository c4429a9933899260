// SPDX-License-Identifier: MPL-2.0

// Package plan defines the release plan: the declarative description of the
// packaged release under test. A plan names the package files, the toolchain
// invocations, the artifacts to build and verify, the probe settings, and the
// supervision parameters for served artifacts.
//
// Plans are written in CUE (validated against an embedded schema) or TOML.
// Every field has a default mirroring the .NET-on-Solus release this harness
// was first built for, so a minimal plan only states what differs.
package plan
