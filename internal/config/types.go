// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// ProbeRuntimeNative runs probe scripts through the system shell.
	ProbeRuntimeNative ProbeRuntime = "native"
	// ProbeRuntimeVirtual runs probe scripts in the embedded mvdan/sh interpreter.
	ProbeRuntimeVirtual ProbeRuntime = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidProbeRuntime is returned when a ProbeRuntime value is not recognized.
	ErrInvalidProbeRuntime = errors.New("invalid probe runtime")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
)

type (
	// ProbeRuntime selects how discovered probe scripts are executed.
	ProbeRuntime string

	// ColorScheme selects terminal color handling for styled output.
	ColorScheme string

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug-level logging and full external tool output.
		Verbose bool `mapstructure:"verbose"`
		// ColorScheme controls styled output ("auto", "dark", "light").
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
	}

	// Config is the resolved harness configuration.
	Config struct {
		// ProbeRuntime selects the execution runtime for probe scripts.
		ProbeRuntime ProbeRuntime `mapstructure:"probe_runtime"`
		// Sudo is the command prefixed to privileged package manager
		// invocations. Empty disables elevation (e.g. when running as root).
		Sudo string `mapstructure:"sudo"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}
)

// IsValid reports whether the ProbeRuntime is a known value.
func (r ProbeRuntime) IsValid() bool {
	switch r {
	case ProbeRuntimeNative, ProbeRuntimeVirtual:
		return true
	}
	return false
}

// IsValid reports whether the ColorScheme is a known value.
func (s ColorScheme) IsValid() bool {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true
	}
	return false
}

// Validate checks constraints the CUE schema cannot express when the config
// arrives through Viper defaults rather than the schema path.
func (c *Config) Validate() error {
	if !c.ProbeRuntime.IsValid() {
		return fmt.Errorf("%w: %q (must be %q or %q)",
			ErrInvalidProbeRuntime, c.ProbeRuntime, ProbeRuntimeNative, ProbeRuntimeVirtual)
	}
	if !c.UI.ColorScheme.IsValid() {
		return fmt.Errorf("%w: %q (must be %q, %q or %q)",
			ErrInvalidColorScheme, c.UI.ColorScheme, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ProbeRuntime: ProbeRuntimeNative,
		Sudo:         "sudo",
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}
