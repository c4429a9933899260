// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"regexp"
	"strings"
)

// VersionSpec identifies a runtime major version and its derived framework
// moniker. Immutable once selected for a phase.
type VersionSpec struct {
	// Major is the bare major version string (e.g. "8").
	Major string
	// Framework is the derived framework moniker (e.g. "net8.0").
	Framework string
}

// Version derives the VersionSpec for a major version from the plan's
// moniker template.
func (p *Plan) Version(major string) VersionSpec {
	return VersionSpec{
		Major:     major,
		Framework: strings.ReplaceAll(p.Moniker, "{major}", major),
	}
}

// Versions derives VersionSpecs for a list of major versions.
func (p *Plan) Versions(majors []string) []VersionSpec {
	specs := make([]VersionSpec, 0, len(majors))
	for _, m := range majors {
		specs = append(specs, p.Version(m))
	}
	return specs
}

// Expand substitutes the template placeholders for the given version:
// {major}, {framework}, {configuration} and {rid}.
func (p *Plan) Expand(template string, v VersionSpec) string {
	r := strings.NewReplacer(
		"{major}", v.Major,
		"{framework}", v.Framework,
		"{configuration}", p.Toolchain.Configuration,
		"{rid}", p.Toolchain.RID,
	)
	return r.Replace(template)
}

// ExpandArgs applies Expand to each element of an argument template.
func (p *Plan) ExpandArgs(args []string, v VersionSpec) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, p.Expand(a, v))
	}
	return out
}

// MonikerPattern compiles a regexp matching the moniker template anywhere in
// a path, with the major version captured. Used to map published standalone
// artifacts back to the version that produced them.
func (p *Plan) MonikerPattern() (*regexp.Regexp, error) {
	parts := strings.Split(p.Moniker, "{major}")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.Compile(strings.Join(parts, `(\d+)`))
}

// MajorFromPath extracts the major version embedded in an artifact path, or
// "" when the path does not contain an expanded moniker.
func (p *Plan) MajorFromPath(path string) string {
	re, err := p.MonikerPattern()
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(path)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
