// SPDX-License-Identifier: MPL-2.0

// Package harness drives the acceptance matrix: for each phase it resets
// the workspace, applies package actions, runs probes, builds and publishes
// the sample solution, and verifies console and served artifacts. Any step
// failure aborts the run.
package harness
