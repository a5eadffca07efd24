// Package version provides build-time version information, set with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/refyne-catalog/internal/version.Version=1.2.0 -X github.com/jmylchreest/refyne-catalog/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags
var (
	Version = "0.0.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info holds all version information
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the version info
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("refyne-catalog %s (%s) built %s %s", i.Version, i.Commit, i.Date, i.Platform)
}

// Short returns the version only.
func (i Info) Short() string {
	return i.Version
}
