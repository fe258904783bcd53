package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	got := Info()
	if !strings.HasPrefix(got, "gorestore version "+Version) {
		t.Errorf("Info() = %q, want prefix %q", got, "gorestore version "+Version)
	}
	if strings.Contains(got, "go:") {
		t.Errorf("Info() = %q, should not include the Go version", got)
	}
}

func TestFullInfo(t *testing.T) {
	got := FullInfo()
	if !strings.Contains(got, "go: "+GoVersion) {
		t.Errorf("FullInfo() = %q, want Go version %q", got, GoVersion)
	}
}
