// Package version tracks the build identity stamped into the pogo binary by
// -ldflags at release time, and the fallback "dev" values used for local
// builds that skip that step.
package version

import "fmt"

// BuildInfo is the version identity of the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var current = BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"}

// Set overrides the build identity. main() calls this with the values
// -ldflags -X bakes into package main's vars, since ldflags can only target
// vars in package main itself.
func Set(version, commit, date string) {
	current = BuildInfo{Version: version, Commit: commit, Date: date}
}

// Info returns the current build identity.
func Info() BuildInfo {
	return current
}

// String renders "version (commit: x, built: y)", the format the CLI's
// --version flag prints.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}
