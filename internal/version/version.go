// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with
//
//	-ldflags "-X elysian-scribe/internal/version.Version=1.2.0 -X ..."
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the one-line form printed by -version.
func String(name string) string {
	return fmt.Sprintf("%s %s (%s, built %s)", name, Version, GitCommit, BuildTime)
}
