// Package version holds the build version, set with -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = ""
)

// String returns the version and, when known, the commit.
func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
