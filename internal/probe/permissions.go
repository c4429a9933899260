// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"relcheck/internal/issue"
	"relcheck/internal/plan"
)

// entryClass is the permission class assigned to a filesystem entry.
type entryClass int

const (
	classOther entryClass = iota
	classDir
	classBinary
	classHeader
)

// Permissions returns the built-in permissions probe: it walks the
// installation root and verifies ownership plus one expected mode per entry
// class. The first deviation fails the probe, naming the offending path and
// both the expected and the actual mode.
func Permissions(cfg plan.PermissionsConfig) Func {
	return func(ctx context.Context, version string) error {
		if cfg.Root == "" {
			return nil // not configured for this release
		}

		info, err := os.Stat(cfg.Root)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("verify installation root").
				WithResource(cfg.Root).
				WithSuggestion("Check the package actually installed files under this prefix").
				Wrap(err).
				BuildError()
		}
		if !info.IsDir() {
			return fmt.Errorf("installation root %s is not a directory", cfg.Root)
		}

		return filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			if owner, ok := fileOwner(info); ok && owner != cfg.Owner {
				return fmt.Errorf("%s: owned by uid %d, expected uid %d", path, owner, cfg.Owner)
			}

			class := classify(d, info, cfg)
			want, checked := expectedMode(class, cfg)
			if !checked {
				return nil
			}

			if got := info.Mode().Perm(); got != want {
				return fmt.Errorf("%s: mode %04o, expected %04o", path, got, want)
			}
			return nil
		})
	}
}

// classify assigns the permission class for one entry.
func classify(d fs.DirEntry, info fs.FileInfo, cfg plan.PermissionsConfig) entryClass {
	if d.IsDir() {
		return classDir
	}

	name := d.Name()
	switch {
	case strings.HasSuffix(name, ".h"):
		return classHeader
	case strings.HasSuffix(name, ".so") || strings.Contains(name, ".so."):
		return classBinary
	case info.Mode().Perm()&0o111 != 0:
		return classBinary
	}

	for _, host := range cfg.HostBinaries {
		if name == host {
			return classBinary
		}
	}

	return classOther
}

// expectedMode returns the single expected mode for a class, and whether the
// class is checked at all.
func expectedMode(class entryClass, cfg plan.PermissionsConfig) (fs.FileMode, bool) {
	switch class {
	case classDir:
		return fs.FileMode(cfg.DirMode), true
	case classBinary:
		return fs.FileMode(cfg.BinaryMode), true
	case classHeader:
		return fs.FileMode(cfg.HeaderMode), true
	default:
		return 0, false
	}
}
