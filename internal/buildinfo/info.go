// Package buildinfo carries the version metadata stamped into the tally
// binary at release time.
package buildinfo

var (
	// Version is the release version, set via ldflags.
	Version = "dev"
	// Commit is the source revision, set via ldflags.
	Commit = "none"
	// Date is the build timestamp, set via ldflags.
	Date = "unknown"
)
