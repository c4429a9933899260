// SPDX-License-Identifier: MPL-2.0

package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"relcheck/internal/cueutil"
	"relcheck/internal/issue"

	"github.com/pelletier/go-toml/v2"
)

const (
	// CUEFileName is the default CUE plan file name.
	CUEFileName = "relplan.cue"
	// TOMLFileName is the default TOML plan file name.
	TOMLFileName = "relplan.toml"
)

//go:embed plan_schema.cue
var planSchema []byte

// Load reads a release plan. With an explicit path the format follows the
// file extension; otherwise relplan.cue and relplan.toml are tried in the
// current directory, and when neither exists the built-in default plan is
// returned.
func Load(path string) (*Plan, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load release plan").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				Wrap(err).
				BuildError()
		}
		return loadFile(path)
	}

	for _, candidate := range []string{CUEFileName, TOMLFileName} {
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}

	p := Default()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("internal error: default plan invalid: %w", err)
	}
	return p, nil
}

// loadFile parses a single plan file according to its extension.
func loadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var parsed *Plan
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		parsed, err = parseCUE(data, path)
	case ".toml":
		parsed, err = parseTOML(data, path)
	default:
		err = fmt.Errorf("unsupported plan format %q (use .cue or .toml)", ext)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse release plan").
			WithResource(path).
			WithSuggestion("Check the error above for the exact field").
			WithSuggestion("Run 'relcheck plan' once it parses to inspect the result").
			Wrap(err).
			BuildError()
	}

	applyDefaults(parsed)

	if err := parsed.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate release plan").
			WithResource(path).
			Wrap(err).
			BuildError()
	}

	return parsed, nil
}

func parseCUE(data []byte, path string) (*Plan, error) {
	return cueutil.Decode[Plan](planSchema, data, "#Plan", cueutil.WithFilename(path))
}

func parseTOML(data []byte, path string) (*Plan, error) {
	var p Plan
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, formatTOMLError(err, path)
	}
	return &p, nil
}

// formatTOMLError mirrors the file-prefixed shape of CUE errors for TOML.
func formatTOMLError(err error, path string) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
	}
	return fmt.Errorf("%s: %w", path, err)
}

// applyDefaults fills unset fields from the built-in default plan. A plan
// file only states what differs from the original release layout.
func applyDefaults(p *Plan) {
	d := Default()

	if p.Moniker == "" {
		p.Moniker = d.Moniker
	}

	if p.Packages.Dir == "" {
		p.Packages.Dir = d.Packages.Dir
	}
	if p.Packages.Prefix == "" {
		p.Packages.Prefix = d.Packages.Prefix
	}
	if p.Packages.Ext == "" {
		p.Packages.Ext = d.Packages.Ext
	}
	if p.Packages.SharedPrefix == "" {
		p.Packages.SharedPrefix = d.Packages.SharedPrefix
	}
	if p.Packages.Exclude == nil {
		p.Packages.Exclude = d.Packages.Exclude
	}

	if p.Toolchain.Command == "" {
		p.Toolchain.Command = d.Toolchain.Command
	}
	if p.Toolchain.BuildArgs == nil {
		p.Toolchain.BuildArgs = d.Toolchain.BuildArgs
	}
	if p.Toolchain.PublishArgs == nil {
		p.Toolchain.PublishArgs = d.Toolchain.PublishArgs
	}
	if p.Toolchain.Configuration == "" {
		p.Toolchain.Configuration = d.Toolchain.Configuration
	}
	if p.Toolchain.RID == "" {
		p.Toolchain.RID = d.Toolchain.RID
	}

	if p.Artifacts == nil {
		p.Artifacts = d.Artifacts
	}
	for i := range p.Artifacts {
		if p.Artifacts[i].Expect == "" {
			p.Artifacts[i].Expect = "SUCCESS"
		}
	}

	if p.Standalone.Glob == "" {
		p.Standalone.Glob = d.Standalone.Glob
	}
	if p.Standalone.Expect == "" {
		p.Standalone.Expect = d.Standalone.Expect
	}

	if p.Probes.Dir == "" {
		p.Probes.Dir = d.Probes.Dir
	}

	if p.Permissions.BinaryMode == 0 {
		p.Permissions.BinaryMode = d.Permissions.BinaryMode
	}
	if p.Permissions.DirMode == 0 {
		p.Permissions.DirMode = d.Permissions.DirMode
	}
	if p.Permissions.HeaderMode == 0 {
		p.Permissions.HeaderMode = d.Permissions.HeaderMode
	}
	if p.Permissions.HostBinaries == nil {
		p.Permissions.HostBinaries = d.Permissions.HostBinaries
	}

	if p.HostTrace.TraceVar == "" {
		p.HostTrace.TraceVar = d.HostTrace.TraceVar
	}
	if p.HostTrace.TraceFileVar == "" {
		p.HostTrace.TraceFileVar = d.HostTrace.TraceFileVar
	}
	if p.HostTrace.Command == nil {
		p.HostTrace.Command = d.HostTrace.Command
	}
	if p.HostTrace.Marker == "" {
		p.HostTrace.Marker = d.HostTrace.Marker
	}

	if p.Supervise.TimeoutSeconds == 0 {
		p.Supervise.TimeoutSeconds = d.Supervise.TimeoutSeconds
	}
	if p.Supervise.PollMillis == 0 {
		p.Supervise.PollMillis = d.Supervise.PollMillis
	}
	if p.Supervise.RequestTimeoutSeconds == 0 {
		p.Supervise.RequestTimeoutSeconds = d.Supervise.RequestTimeoutSeconds
	}
}
