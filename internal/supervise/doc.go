// SPDX-License-Identifier: MPL-2.0

// Package supervise runs a served artifact as a managed child process: it
// captures output to a log file, waits for a readiness marker with a bounded
// poll loop, performs a single HTTP check against the serving endpoint, and
// always tears the process down afterwards.
package supervise
