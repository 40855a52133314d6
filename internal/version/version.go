package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the tacc CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = []color.Attribute{color.FgYellow, color.Bold}
	versionMinorColor = []color.Attribute{color.FgGreen, color.Bold}
	versionPatchColor = []color.Attribute{color.FgBlue, color.Bold}
)

// Info is the trimmed build metadata.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// Get collects the build metadata; an empty Version reads as "dev".
func Get() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:    v,
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
	}
}

// Colored renders Version with major, minor and patch in their own colors.
// A version that is not major.minor.patch[-suffix] comes back unchanged.
func Colored(enabled bool) string {
	v := Get().Version
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := sprint(versionMajorColor, parts[0], enabled) + "." +
		sprint(versionMinorColor, parts[1], enabled) + "." +
		sprint(versionPatchColor, parts[2], enabled)
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

func sprint(attrs []color.Attribute, s string, enabled bool) string {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}
