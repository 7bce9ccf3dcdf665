package version

import (
	"fmt"
	"runtime"
)

// Build metadata, injected via -ldflags at release time.
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildTime = ""
)

// String returns the version with build metadata when it was injected
func String() string {
	if GitCommit == "" || BuildTime == "" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)",
		Version, commit, BuildTime, runtime.Version())
}

// ShortString returns just the version number
func ShortString() string {
	return Version
}
