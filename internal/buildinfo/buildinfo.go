// Package buildinfo holds the version metadata of the gitix binary. The
// linker sets the variables in cmd/gitix; main passes them to Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Set stores the linker supplied metadata.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// Version returns the build version string.
func Version() string { return version }

// Commit returns the build commit hash.
func Commit() string { return commit }

// Date returns the build date string.
func Date() string { return date }

// BuiltBy returns the build agent string.
func BuiltBy() string { return builtBy }

// Enrich fills the commit from the embedded VCS revision and the builder
// from the Go version when the linker left them at their defaults.
func Enrich() {
	if commit != "none" && builtBy != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}
	if builtBy == "unknown" {
		builtBy = info.GoVersion
	}
}

// String renders the one line printed by `gitix version`.
func String() string {
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("gitix %s (commit %s, built %s by %s)", version, short, date, builtBy)
}
