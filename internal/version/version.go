// Package version exposes build metadata stamped by the release
// pipeline through -ldflags. The zero values mark a local build.
package version

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
