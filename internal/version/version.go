// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the line printed by cx --version.
func String() string {
	return fmt.Sprintf("cx version %s (commit: %s, built: %s)", Version, Commit, Date)
}

// UserAgent identifies cx to remote CMS servers.
func UserAgent() string {
	return "cx/" + Version
}
