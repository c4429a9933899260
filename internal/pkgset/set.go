// SPDX-License-Identifier: MPL-2.0

package pkgset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"relcheck/internal/issue"
	"relcheck/internal/plan"
)

// sharedGroup is the reserved group key for version-independent packages.
const sharedGroup = "shared"

// Set is the enumerated package universe: built package files grouped by
// major version, with shared base packages in their own group.
type Set struct {
	cfg    plan.PackagesConfig
	groups map[string][]string
}

// Enumerate scans the package directory and groups package files by major
// version. Files whose names contain an excluded substring are skipped.
func Enumerate(cfg plan.PackagesConfig) (*Set, error) {
	pattern := filepath.Join(cfg.Dir, cfg.Prefix+"-*."+cfg.Ext)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan package directory: %w", err)
	}

	// Package names look like <prefix>-8-sdk-8.0.117-...  or
	// <prefix>-9.0.5-... ; the major version is either the standalone
	// number after the prefix or the leading component of the version.
	versionRe := regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.Prefix) + `-(?:(\d+)-)?(?:sdk-)?(\d+)\.\d+`)

	s := &Set{cfg: cfg, groups: make(map[string][]string)}

scan:
	for _, f := range files {
		base := filepath.Base(f)

		for _, excl := range cfg.Exclude {
			if strings.Contains(base, excl) {
				continue scan
			}
		}

		if cfg.SharedPrefix != "" && strings.HasPrefix(base, cfg.SharedPrefix+"-") {
			s.groups[sharedGroup] = append(s.groups[sharedGroup], f)
			continue
		}

		m := versionRe.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		major := m[1]
		if major == "" {
			major = m[2]
		}
		s.groups[major] = append(s.groups[major], f)
	}

	for _, g := range s.groups {
		sort.Strings(g)
	}

	return s, nil
}

// Versions returns the enumerated major versions, sorted, excluding shared.
func (s *Set) Versions() []string {
	var versions []string
	for v := range s.groups {
		if v != sharedGroup {
			versions = append(versions, v)
		}
	}
	sort.Strings(versions)
	return versions
}

// HasVersion reports whether packages exist for the given major version.
func (s *Set) HasVersion(major string) bool {
	_, ok := s.groups[major]
	return ok && major != sharedGroup
}

// SharedFiles returns the version-independent base package files.
func (s *Set) SharedFiles() []string {
	return append([]string(nil), s.groups[sharedGroup]...)
}

// FilesFor returns the ordered install list for the requested versions:
// shared base packages first, then each version's packages in request order.
func (s *Set) FilesFor(versions []string) ([]string, error) {
	var files []string
	files = append(files, s.groups[sharedGroup]...)

	for _, v := range versions {
		group, ok := s.groups[v]
		if !ok {
			return nil, issue.NewErrorContext().
				WithOperation("select packages").
				WithResource(s.cfg.Dir).
				WithSuggestion("Run 'relcheck plan' to list enumerated versions").
				Wrap(fmt.Errorf("no packages found for version %s (available: %s)",
					v, strings.Join(s.Versions(), ", "))).
				BuildError()
		}
		files = append(files, group...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no packages found to install")
	}

	return files, nil
}

// RemoveNames returns the package names covering every enumerated version,
// deduplicated, for an uninstall-all action.
func (s *Set) RemoveNames() []string {
	names := []string{}
	if s.cfg.SharedPrefix != "" {
		names = append(names, s.cfg.SharedPrefix)
	}

	for _, v := range s.Versions() {
		names = append(names,
			s.cfg.Prefix+"-"+v,
			s.cfg.Prefix+"-"+v+"-sdk",
			s.cfg.Prefix,
			s.cfg.Prefix+"-sdk",
		)
	}

	seen := make(map[string]bool, len(names))
	unique := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}
	return unique
}

// GroupStat summarizes one enumerated version group for the analysis banner.
type GroupStat struct {
	Version  string
	Runtime  int
	SDK      int
	IsShared bool
}

// Analysis returns per-group package counts, shared group first, versions
// sorted.
func (s *Set) Analysis() []GroupStat {
	var stats []GroupStat

	if shared, ok := s.groups[sharedGroup]; ok {
		stats = append(stats, GroupStat{Version: sharedGroup, Runtime: len(shared), IsShared: true})
	}

	for _, v := range s.Versions() {
		st := GroupStat{Version: v}
		for _, f := range s.groups[v] {
			if strings.Contains(strings.ToLower(filepath.Base(f)), "sdk") {
				st.SDK++
			} else {
				st.Runtime++
			}
		}
		stats = append(stats, st)
	}

	return stats
}
