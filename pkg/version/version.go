package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const name = "pyqs-uploader"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Normalized returns Version as a v-prefixed semantic version, or Version
// unchanged when it does not parse (local "dev" builds).
func Normalized() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return "v" + v.String()
}

// Summary returns a human-friendly version string for CLI output.
func Summary() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", name, Normalized(), CommitHash, BuildDate)
}

// UserAgent is sent on every GitHub API request.
func UserAgent() string {
	return name + "/" + Normalized()
}
