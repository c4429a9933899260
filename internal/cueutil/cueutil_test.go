// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Probe: {
	name:     string
	timeout?: int & >0
	args?: [...string]
}
`

type testProbe struct {
	Name    string   `json:"name"`
	Timeout int      `json:"timeout"`
	Args    []string `json:"args"`
}

func TestDecode_Valid(t *testing.T) {
	data := []byte(`
name:    "permissions"
timeout: 30
args: ["--strict"]
`)

	probe, err := Decode[testProbe]([]byte(testSchema), data, "#Probe", WithFilename("probe.cue"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if probe.Name != "permissions" {
		t.Errorf("Name = %q, want %q", probe.Name, "permissions")
	}
	if probe.Timeout != 30 {
		t.Errorf("Timeout = %d, want 30", probe.Timeout)
	}
	if len(probe.Args) != 1 || probe.Args[0] != "--strict" {
		t.Errorf("Args = %v, want [--strict]", probe.Args)
	}
}

func TestDecode_SchemaViolation(t *testing.T) {
	data := []byte(`
name:    "permissions"
timeout: -1
`)

	_, err := Decode[testProbe]([]byte(testSchema), data, "#Probe", WithFilename("probe.cue"))
	if err == nil {
		t.Fatal("Decode() expected error for negative timeout, got nil")
	}
	if !strings.Contains(err.Error(), "probe.cue") {
		t.Errorf("error %q does not name the file", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error %q does not name the offending field", err)
	}
}

func TestDecode_SyntaxError(t *testing.T) {
	data := []byte(`name: "unclosed`)

	_, err := Decode[testProbe]([]byte(testSchema), data, "#Probe", WithFilename("probe.cue"))
	if err == nil {
		t.Fatal("Decode() expected error for syntax error, got nil")
	}
}

func TestDecode_MissingDefinition(t *testing.T) {
	_, err := Decode[testProbe]([]byte(testSchema), []byte(`name: "x"`), "#Nope")
	if err == nil {
		t.Fatal("Decode() expected error for unknown definition, got nil")
	}
	if !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("error %q does not name the missing definition", err)
	}
}

func TestDecode_FileSizeLimit(t *testing.T) {
	big := []byte("name: \"" + strings.Repeat("x", 64) + "\"")

	_, err := Decode[testProbe]([]byte(testSchema), big, "#Probe",
		WithFilename("probe.cue"), WithMaxFileSize(16))
	if err == nil {
		t.Fatal("Decode() expected size limit error, got nil")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error %q is not a size limit error", err)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want string
	}{
		{"empty", nil, ""},
		{"simple", []string{"name"}, "name"},
		{"nested", []string{"supervise", "timeout"}, "supervise.timeout"},
		{"index", []string{"artifacts", "0", "url"}, "artifacts[0].url"},
		{"leading index treated as field", []string{"0", "url"}, "0.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
