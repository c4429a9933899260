// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ArtifactConsole is a console artifact: run once, assert captured stdout.
	ArtifactConsole ArtifactKind = "console"
	// ArtifactServed is a server-style artifact: supervised, probed over HTTP.
	ArtifactServed ArtifactKind = "served"
)

var (
	// ErrInvalidArtifactKind is returned when an artifact kind is not recognized.
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")
	// ErrMissingMarker is returned when a served artifact has no readiness marker.
	ErrMissingMarker = errors.New("served artifact requires a readiness marker")
	// ErrMissingURL is returned when a served artifact has no probe URL.
	ErrMissingURL = errors.New("served artifact requires a probe url")
)

type (
	// ArtifactKind distinguishes console artifacts from served ones.
	ArtifactKind string

	// PackagesConfig locates and groups the package files under test.
	PackagesConfig struct {
		// Dir is the directory holding the built package files.
		Dir string `json:"dir" toml:"dir"`
		// Prefix is the package name prefix (e.g. "dotnet" matches dotnet-*).
		Prefix string `json:"prefix" toml:"prefix"`
		// Ext is the package file extension without the dot.
		Ext string `json:"ext" toml:"ext"`
		// SharedPrefix marks version-independent base packages that must be
		// installed before any version-specific package.
		SharedPrefix string `json:"shared_prefix" toml:"shared_prefix"`
		// Exclude lists substrings; package files containing any are ignored.
		Exclude []string `json:"exclude" toml:"exclude"`
	}

	// ToolchainConfig describes how to build and publish the sample solution.
	// Argument templates may reference {framework}, {configuration} and {rid}.
	ToolchainConfig struct {
		// Command is the toolchain binary (e.g. "dotnet").
		Command string `json:"command" toml:"command"`
		// BuildArgs is the argument template for the build step.
		BuildArgs []string `json:"build_args" toml:"build_args"`
		// PublishArgs is the argument template for the self-contained
		// single-file publish step.
		PublishArgs []string `json:"publish_args" toml:"publish_args"`
		// Configuration is the build configuration substituted for {configuration}.
		Configuration string `json:"configuration" toml:"configuration"`
		// RID is the runtime identifier substituted for {rid}.
		RID string `json:"rid" toml:"rid"`
	}

	// Artifact is a built output to verify. Paths are templates that may
	// reference {framework}, {configuration} and {rid}.
	Artifact struct {
		// Name identifies the artifact in output and failure messages.
		Name string `json:"name" toml:"name"`
		// Kind is "console" or "served".
		Kind ArtifactKind `json:"kind" toml:"kind"`
		// Path is the built executable path template.
		Path string `json:"path" toml:"path"`
		// Expect is the literal expected output (console stdout or HTTP body).
		Expect string `json:"expect" toml:"expect"`
		// Marker is the readiness marker for served artifacts.
		Marker string `json:"marker" toml:"marker"`
		// URL is the liveness probe URL for served artifacts.
		URL string `json:"url" toml:"url"`
		// PTY spawns the served artifact under a pseudo-terminal. Some servers
		// only emit their readiness line when attached to a terminal.
		PTY bool `json:"pty" toml:"pty"`
	}

	// StandaloneConfig describes the self-contained re-verification that runs
	// after all packages are removed.
	StandaloneConfig struct {
		// Glob locates published self-contained executables.
		Glob string `json:"glob" toml:"glob"`
		// Expect is the literal expected stdout.
		Expect string `json:"expect" toml:"expect"`
	}

	// ProbesConfig configures external probe discovery.
	ProbesConfig struct {
		// Dir is scanned for executable probe scripts. A missing directory
		// skips discovery without failing the run.
		Dir string `json:"dir" toml:"dir"`
	}

	// PermissionsConfig parameterizes the built-in permissions probe.
	PermissionsConfig struct {
		// Root is the installation root to walk. Empty disables the probe.
		Root string `json:"root" toml:"root"`
		// Owner is the expected owning user id.
		Owner int `json:"owner" toml:"owner"`
		// BinaryMode is the expected mode for executables and shared libraries.
		BinaryMode uint32 `json:"binary_mode" toml:"binary_mode"`
		// DirMode is the expected mode for directories.
		DirMode uint32 `json:"dir_mode" toml:"dir_mode"`
		// HeaderMode is the expected mode for header files.
		HeaderMode uint32 `json:"header_mode" toml:"header_mode"`
		// HostBinaries are file names always treated as executables.
		HostBinaries []string `json:"host_binaries" toml:"host_binaries"`
	}

	// HostTraceConfig parameterizes the built-in host-resolution probe.
	HostTraceConfig struct {
		// TraceVar is the environment variable enabling tracing.
		TraceVar string `json:"trace_var" toml:"trace_var"`
		// TraceFileVar is the environment variable naming the trace file.
		TraceFileVar string `json:"trace_file_var" toml:"trace_file_var"`
		// Command is the diagnostic command run with tracing enabled.
		Command []string `json:"command" toml:"command"`
		// Marker is the substring the trace file must contain.
		Marker string `json:"marker" toml:"marker"`
	}

	// SuperviseConfig bounds served-artifact supervision.
	SuperviseConfig struct {
		// TimeoutSeconds bounds the wait for the readiness marker.
		TimeoutSeconds int `json:"timeout_seconds" toml:"timeout_seconds"`
		// PollMillis is the log poll interval.
		PollMillis int `json:"poll_millis" toml:"poll_millis"`
		// RequestTimeoutSeconds bounds the single liveness HTTP request.
		RequestTimeoutSeconds int `json:"request_timeout_seconds" toml:"request_timeout_seconds"`
	}

	// Plan is the resolved release plan.
	Plan struct {
		// Moniker is the framework moniker template; {major} is replaced by
		// the major version (e.g. "net{major}.0" -> "net8.0").
		Moniker string `json:"moniker" toml:"moniker"`

		Packages    PackagesConfig    `json:"packages" toml:"packages"`
		Toolchain   ToolchainConfig   `json:"toolchain" toml:"toolchain"`
		Artifacts   []Artifact        `json:"artifacts" toml:"artifacts"`
		Standalone  StandaloneConfig  `json:"standalone" toml:"standalone"`
		Probes      ProbesConfig      `json:"probes" toml:"probes"`
		Permissions PermissionsConfig `json:"permissions" toml:"permissions"`
		HostTrace   HostTraceConfig   `json:"host_trace" toml:"host_trace"`
		Supervise   SuperviseConfig   `json:"supervise" toml:"supervise"`
	}
)

// IsValid reports whether the ArtifactKind is a known value.
func (k ArtifactKind) IsValid() bool {
	return k == ArtifactConsole || k == ArtifactServed
}

// Timeout returns the readiness timeout as a Duration.
func (s SuperviseConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// PollInterval returns the log poll interval as a Duration.
func (s SuperviseConfig) PollInterval() time.Duration {
	return time.Duration(s.PollMillis) * time.Millisecond
}

// RequestTimeout returns the HTTP request timeout as a Duration.
func (s SuperviseConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// Default returns the plan used when no plan file exists: the .NET-on-Solus
// release layout the harness was originally written against.
func Default() *Plan {
	return &Plan{
		Moniker: "net{major}.0",
		Packages: PackagesConfig{
			Dir:          "/var/lib/solbuild/local",
			Prefix:       "dotnet",
			Ext:          "eopkg",
			SharedPrefix: "dotnet-shared",
			Exclude:      []string{"source-built-artifacts"},
		},
		Toolchain: ToolchainConfig{
			Command:   "dotnet",
			BuildArgs: []string{"build", ".", "-p:framework={framework}"},
			PublishArgs: []string{
				"publish", "console",
				"-c", "{configuration}",
				"-r", "{rid}",
				"--self-contained", "true",
				"-p:PublishSingleFile=true",
				"-p:framework={framework}",
			},
			Configuration: "Release",
			RID:           "solus.4-x64",
		},
		Artifacts: []Artifact{
			{
				Name:   "console",
				Kind:   ArtifactConsole,
				Path:   "./console/bin/Debug/{framework}/console",
				Expect: "SUCCESS",
			},
			{
				Name:   "webapi",
				Kind:   ArtifactServed,
				Path:   "./webapi/bin/Debug/{framework}/webapi",
				Expect: "SUCCESS",
				Marker: "Now listening on:",
				URL:    "http://localhost:5000/TEST",
			},
			{
				Name:   "webapiaot",
				Kind:   ArtifactServed,
				Path:   "./webapiaot/bin/Debug/{framework}/webapiaot",
				Expect: "SUCCESS",
				Marker: "Now listening on:",
				URL:    "http://localhost:5000/TEST",
			},
		},
		Standalone: StandaloneConfig{
			Glob:   "./console/bin/Release/*/{rid}/publish/console",
			Expect: "SUCCESS",
		},
		Probes: ProbesConfig{
			Dir: "other_tests",
		},
		Permissions: PermissionsConfig{
			Root:         "", // disabled unless the plan names an install root
			Owner:        0,
			BinaryMode:   0o755,
			DirMode:      0o755,
			HeaderMode:   0o644,
			HostBinaries: []string{"dotnet", "apphost", "singlefilehost"},
		},
		HostTrace: HostTraceConfig{
			TraceVar:     "COREHOST_TRACE",
			TraceFileVar: "COREHOST_TRACEFILE",
			Command:      []string{"dotnet", "--info"},
			Marker:       "Resolved fxr",
		},
		Supervise: SuperviseConfig{
			TimeoutSeconds:        10,
			PollMillis:            100,
			RequestTimeoutSeconds: 5,
		},
	}
}

// Validate checks cross-field constraints the schema cannot express.
func (p *Plan) Validate() error {
	if !strings.Contains(p.Moniker, "{major}") {
		return fmt.Errorf("moniker template %q does not reference {major}", p.Moniker)
	}

	for i, a := range p.Artifacts {
		if !a.Kind.IsValid() {
			return fmt.Errorf("artifacts[%d] %q: %w: %q", i, a.Name, ErrInvalidArtifactKind, a.Kind)
		}
		if a.Kind == ArtifactServed {
			if a.Marker == "" {
				return fmt.Errorf("artifacts[%d] %q: %w", i, a.Name, ErrMissingMarker)
			}
			if a.URL == "" {
				return fmt.Errorf("artifacts[%d] %q: %w", i, a.Name, ErrMissingURL)
			}
		}
	}

	if p.Supervise.TimeoutSeconds <= 0 {
		return fmt.Errorf("supervise.timeout_seconds must be positive, got %d", p.Supervise.TimeoutSeconds)
	}
	if p.Supervise.PollMillis <= 0 {
		return fmt.Errorf("supervise.poll_millis must be positive, got %d", p.Supervise.PollMillis)
	}

	return nil
}
