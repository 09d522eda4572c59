// Package version holds build information injected at link time.
package version

import "runtime/debug"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/devcraft/storekeep/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/devcraft/storekeep/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/devcraft/storekeep/internal/version.Date={{.Date}}
)

// Info is the build information of the running binary.
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Get returns the build information. Builds without ldflags fall back to
// the module version and VCS revision recorded by the go tool.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "unknown":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}
