// Package buildinfo holds build metadata set with -ldflags, e.g.
//
//	-X github.com/myschoolct/portal-assistant/internal/buildinfo.Version=v1.2.0
package buildinfo

// Set at link time. Empty in local builds.
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

// Release names this build for error tracking: the version when tagged,
// else the short commit, else "dev".
func Release() string {
	switch {
	case Version != "":
		return Version
	case len(Commit) >= 7:
		return Commit[:7]
	case Commit != "":
		return Commit
	}
	return "dev"
}

// Info returns the metadata as a map for health and log output.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
	}
}
