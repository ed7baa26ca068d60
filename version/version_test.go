package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "v1.4.0"
	GitCommit = "0123456789abcdef"
	BuildTime = "2024-05-01T10:00:00Z"

	info := Get()
	if info.Version != "v1.4.0" {
		t.Errorf("expected v1.4.0, got %q", info.Version)
	}
	if info.GitCommit != "0123456" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime != "2024-05-01T10:00:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "v1.0.0", GitCommit: "abc1234"}, "v1.0.0-abc1234"},
		{"dirty", Info{Version: "v1.0.0", GitCommit: "abc1234", IsDirty: true}, "v1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "v1.0.0", BuildTime: "2024-05-01T10:00:00Z", GoVersion: "go1.25.0"}.String()
	if !strings.Contains(s, "built 2024-05-01T10:00:00Z") || !strings.HasSuffix(s, "go1.25.0") {
		t.Errorf("unexpected String() %q", s)
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "v2.1.0"
	if got := UserAgent(); got != "cloudstore/2.1.0" {
		t.Errorf("expected cloudstore/2.1.0, got %q", got)
	}
}
