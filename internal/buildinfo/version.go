// Package buildinfo contains build-time information embedded via ldflags
package buildinfo

import "runtime/debug"

// Version is the application version, set at build time via ldflags
// Example: go build -ldflags "-X github.com/YoshitsuguKoike/tasktrack/internal/buildinfo.Version=v1.0.0"
var Version = ""

// GetVersion returns the ldflags version, then the module version recorded
// by `go install`, then "dev"
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
