package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build information for `kurbeln version`.
func String() string {
	return fmt.Sprintf("kurbeln %s (%s, built %s)", Version, GitSHA, BuildTime)
}
