package version

import "github.com/fatih/color"

// Version information for the textnorm CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	detailColor  = color.New(color.Faint)
)

// Banner returns the one-line version description, colored when color
// output is enabled.
func Banner() string {
	s := nameColor.Sprint("textnorm") + " " + versionColor.Sprint(Version)
	if GitCommit != "" {
		s += " " + detailColor.Sprint("("+GitCommit+")")
	}
	if BuildDate != "" {
		s += " " + detailColor.Sprint(BuildDate)
	}
	return s
}
