package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	// Default value should be "unknown" until set by build
	if Version != "unknown" {
		t.Logf("Version is: %s (expected 'unknown' or version set via ldflags)", Version)
	}
}

func TestBuildInfo(t *testing.T) {
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}

	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "hotbuild "+Version) {
		t.Errorf("unexpected version line %q", s)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("version line %q should mention commit", s)
	}
}
