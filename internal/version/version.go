package version

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
)

// Version information for the borrowck CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Major, Minor and Patch make up the semantic version.
	Major = "0"
	Minor = "3"
	Patch = "0"
	// Suffix is appended after a dash, e.g. "dev".
	Suffix = "dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// String returns the plain semantic version.
func String() string {
	v := Major + "." + Minor + "." + Patch
	if Suffix != "" {
		v += "-" + Suffix
	}
	return v
}

// Colored returns the version with each component highlighted. Colour
// follows fatih/color's global switch (NO_COLOR, non-tty output).
func Colored() string {
	v := versionMajorColor.Sprint(Major) + "." + versionMinorColor.Sprint(Minor) + "." + versionPatchColor.Sprint(Patch)
	if Suffix != "" {
		v += "-" + Suffix
	}
	return v
}

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build description.
func Current() Info {
	return Info{
		Version:   String(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
