// Package version carries build metadata, set with -ldflags:
//
//	go build -ldflags "-X viewc/internal/version.Version=0.3.0 -X viewc/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of viewc.
	Version = "0.1.0-dev"
	// GitCommit is an optional short commit hash.
	GitCommit = ""
	// BuildDate is an optional ISO-8601 build date.
	BuildDate = ""
)

// String is the one-line form printed by `viewc version`.
func String() string {
	var sb strings.Builder
	sb.WriteString("viewc ")
	sb.WriteString(Version)
	if GitCommit != "" {
		fmt.Fprintf(&sb, " (%s", GitCommit)
		if BuildDate != "" {
			sb.WriteString(", " + BuildDate)
		}
		sb.WriteByte(')')
	}
	fmt.Fprintf(&sb, " %s/%s", runtime.GOOS, runtime.GOARCH)
	return sb.String()
}

// Colored highlights the version number; color.NoColor disables it.
func Colored() string {
	major, rest, _ := strings.Cut(Version, ".")
	minor, patch, _ := strings.Cut(rest, ".")
	v := color.New(color.FgYellow, color.Bold).Sprint(major)
	if minor != "" {
		v += "." + color.New(color.FgGreen, color.Bold).Sprint(minor)
	}
	if patch != "" {
		v += "." + color.New(color.FgBlue, color.Bold).Sprint(patch)
	}
	return strings.Replace(String(), Version, v, 1)
}
