// SPDX-License-Identifier: MPL-2.0

package pkgset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"relcheck/internal/plan"
)

// touch creates empty package files in dir.
func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", n, err)
		}
	}
}

func testConfig(dir string) plan.PackagesConfig {
	return plan.PackagesConfig{
		Dir:          dir,
		Prefix:       "dotnet",
		Ext:          "eopkg",
		SharedPrefix: "dotnet-shared",
		Exclude:      []string{"source-built-artifacts"},
	}
}

func TestEnumerate_GroupsByMajorVersion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"dotnet-8-8.0.117-1-x86_64.eopkg",
		"dotnet-8-sdk-8.0.117-1-x86_64.eopkg",
		"dotnet-9.0.5-2-x86_64.eopkg",
		"dotnet-sdk-9.0.5-2-x86_64.eopkg", // no embedded major: grouped by version component
		"dotnet-shared-1.0-3-x86_64.eopkg",
		"dotnet-source-built-artifacts-9.0.5-1-x86_64.eopkg", // excluded
		"unrelated-1.0-1-x86_64.eopkg",                       // wrong prefix
	)

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	if got := s.Versions(); !reflect.DeepEqual(got, []string{"8", "9"}) {
		t.Errorf("Versions() = %v, want [8 9]", got)
	}
	if !s.HasVersion("8") || s.HasVersion("7") {
		t.Errorf("HasVersion() wrong: 8=%v 7=%v", s.HasVersion("8"), s.HasVersion("7"))
	}
	if got := len(s.SharedFiles()); got != 1 {
		t.Errorf("len(SharedFiles()) = %d, want 1", got)
	}
}

func TestEnumerate_SkipsSdkPrefixConfusion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dotnet-sdk-8.0.117-1-x86_64.eopkg")

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	// "dotnet-sdk-8.0.117" has no embedded major group, so the major comes
	// from the version component.
	if got := s.Versions(); !reflect.DeepEqual(got, []string{"8"}) {
		t.Errorf("Versions() = %v, want [8]", got)
	}
}

func TestFilesFor_SharedFirstThenRequestOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"dotnet-8-8.0.117-1-x86_64.eopkg",
		"dotnet-9-9.0.5-1-x86_64.eopkg",
		"dotnet-shared-1.0-1-x86_64.eopkg",
	)

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	files, err := s.FilesFor([]string{"9", "8"})
	if err != nil {
		t.Fatalf("FilesFor() error = %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3", len(files))
	}
	if !strings.Contains(files[0], "dotnet-shared") {
		t.Errorf("files[0] = %q, want shared package first", files[0])
	}
	if !strings.Contains(files[1], "dotnet-9") {
		t.Errorf("files[1] = %q, want version 9 before 8 (request order)", files[1])
	}
}

func TestFilesFor_UnknownVersion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dotnet-8-8.0.117-1-x86_64.eopkg")

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	_, err = s.FilesFor([]string{"7"})
	if err == nil {
		t.Fatal("FilesFor() accepted unknown version")
	}
	if !strings.Contains(err.Error(), "7") || !strings.Contains(err.Error(), "8") {
		t.Errorf("error %q should name the missing version and the available set", err)
	}
}

func TestFilesFor_EmptySet(t *testing.T) {
	s, err := Enumerate(testConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if _, err := s.FilesFor(nil); err == nil {
		t.Error("FilesFor() on empty set should fail")
	}
}

func TestRemoveNames_Deduplicated(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"dotnet-8-8.0.117-1-x86_64.eopkg",
		"dotnet-9-9.0.5-1-x86_64.eopkg",
	)

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	names := s.RemoveNames()
	want := []string{
		"dotnet-shared",
		"dotnet-8", "dotnet-8-sdk", "dotnet", "dotnet-sdk",
		"dotnet-9", "dotnet-9-sdk",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("RemoveNames() = %v, want %v", names, want)
	}
}

func TestAnalysis(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"dotnet-8-8.0.117-1-x86_64.eopkg",
		"dotnet-8-sdk-8.0.117-1-x86_64.eopkg",
		"dotnet-shared-1.0-1-x86_64.eopkg",
	)

	s, err := Enumerate(testConfig(dir))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	stats := s.Analysis()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}
	if !stats[0].IsShared {
		t.Error("stats[0] should be the shared group")
	}
	if stats[1].Runtime != 1 || stats[1].SDK != 1 {
		t.Errorf("stats[1] = %+v, want 1 runtime / 1 sdk", stats[1])
	}
}
