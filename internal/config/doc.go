// SPDX-License-Identifier: MPL-2.0

// Package config loads the relcheck harness configuration.
//
// Configuration is optional: every field has a default, and the harness runs
// without any config file at all. When present, the file is CUE, validated
// against an embedded schema and merged into Viper so that flags and
// environment variables can override it.
package config
