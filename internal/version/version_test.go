package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVars(t *testing.T, v, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = oldV, oldC, oldD })
}

func TestString(t *testing.T) {
	tests := []struct {
		name, commit, date string
		want               string
	}{
		{name: "bare", want: "viewc 1.2.3 "},
		{name: "commit", commit: "abc123", want: "viewc 1.2.3 (abc123) "},
		{name: "commit and date", commit: "abc123", date: "2026-01-15", want: "viewc 1.2.3 (abc123, 2026-01-15) "},
		{name: "date only", date: "2026-01-15", want: "viewc 1.2.3 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, "1.2.3", tt.commit, tt.date)
			if got := String(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("String() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestColoredPlain(t *testing.T) {
	withVars(t, "1.2.3", "", "")
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
	if Colored() != String() {
		t.Errorf("Colored() = %q, want %q", Colored(), String())
	}
}
