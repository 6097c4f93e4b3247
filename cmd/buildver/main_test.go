package main

import (
	"os"
	"path/filepath"
	"testing"
)

// ///////////////////////////////////////////////
// formatTaggedVersion Tests
// ///////////////////////////////////////////////

func TestFormatTaggedVersionExactTag(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"clean tag", "v0.3.0", "0.3.0"},
		{"dirty tag", "v0.3.0-dirty", "0.3.0-dirty"},
		{"major only", "v1.0.0", "1.0.0"},
		{"major dirty", "v1.0.0-dirty", "1.0.0-dirty"},
		{"prerelease tag", "v2.0.0-rc.1", "2.0.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTaggedVersion(tt.desc)
			if got != tt.want {
				t.Errorf("formatTaggedVersion(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}

func TestFormatTaggedVersionCommitsPastTag(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"2 past tag", "v0.3.0-2-g89abcde", "0.3.0-dev.2+g89abcde"},
		{"2 past tag dirty", "v0.3.0-2-g89abcde-dirty", "0.3.0-dev.2+g89abcde.dirty"},
		{"1 past tag", "v1.0.0-1-gabcdef0", "1.0.0-dev.1+gabcdef0"},
		{"large count", "v2.5.0-42-g9999999", "2.5.0-dev.42+g9999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTaggedVersion(tt.desc)
			if got != tt.want {
				t.Errorf("formatTaggedVersion(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}

func TestFormatTaggedVersionStripsVPrefix(t *testing.T) {
	got := formatTaggedVersion("v3.2.1")
	if got != "3.2.1" {
		t.Errorf("formatTaggedVersion(%q) = %q, want v prefix stripped", "v3.2.1", got)
	}
}

// ///////////////////////////////////////////////
// baseVersion Tests
// ///////////////////////////////////////////////

func TestBaseVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"root entry", `{".": "0.3.0"}`, "0.3.0"},
		{"missing root key", `{"other": "1.0.0"}`, "0.0.0"},
		{"empty root value", `{".": ""}`, "0.0.0"},
		{"malformed json", `{not json`, "0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write manifest: %v", err)
			}
			got := baseVersion(path)
			if got != tt.want {
				t.Errorf("baseVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBaseVersionMissingFile(t *testing.T) {
	got := baseVersion(filepath.Join(t.TempDir(), "absent.json"))
	if got != "0.0.0" {
		t.Errorf("baseVersion() = %q, want 0.0.0 fallback", got)
	}
}

// ///////////////////////////////////////////////
// isDirty Tests
// ///////////////////////////////////////////////

func TestIsDirtyReturnsBool(t *testing.T) {
	// isDirty shells out to git, so we just verify it doesn't panic.
	// The actual value depends on repo state.
	_ = isDirty()
}
