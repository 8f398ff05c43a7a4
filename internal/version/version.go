// Package version carries build metadata set with -ldflags "-X".
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for logs and User-Agent headers.
func String() string {
	return fmt.Sprintf("esmodel/%s (%s, %s)", Version, Commit, Date)
}
