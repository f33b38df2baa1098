// Package version carries build metadata injected with -ldflags -X.
package version

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is when the binary was built.
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String(binary string) string {
	return fmt.Sprintf("%s %s (git %s, built %s)", binary, Version, GitSHA, BuildTime)
}
