package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestBanner(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3-rc1"
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"

	if got := Colored(); got != "1.2.3-rc1" {
		t.Fatalf("Colored() = %q", got)
	}
	banner := Banner()
	for _, want := range []string{"codan 1.2.3-rc1\n", "commit: abc123def456\n", "built:  2026-01-15T10:30:00Z\n"} {
		if !strings.Contains(banner, want) {
			t.Fatalf("banner %q lacks %q", banner, want)
		}
	}

	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Fatalf("non-semver version rewritten: %q", got)
	}
}
