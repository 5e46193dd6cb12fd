package version

import (
	"strings"
	"testing"
	"time"
)

func withBuild(t *testing.T, v, commit, built string) {
	t.Helper()
	ov, oc, ob := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = ov, oc, ob })
}

func TestGet(t *testing.T) {
	withBuild(t, "1.2.0", "abcdef0123", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("GitCommit = %q, want short hash", info.GitCommit)
	}
	if !info.BuildTime.Equal(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("BuildTime = %v", info.BuildTime)
	}
}

func TestInfo_Release(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0", Dirty: true}, false},
		{Info{Version: "1.0.0-dirty"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.info.String(), func(t *testing.T) {
			if got := tt.info.Release(); got != tt.want {
				t.Errorf("Release() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestInfo_Long(t *testing.T) {
	info := Info{Version: "1.0.0", GoVersion: "go1.26.0", BuildTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	got := info.Long()
	if !strings.HasPrefix(got, "1.0.0 (go1.26.0)") || !strings.Contains(got, "built 2026-01-01T00:00:00Z") {
		t.Errorf("Long() = %q", got)
	}
}
