package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   string // Set via ldflags.
	Branch    string
	BuildUser string
	BuildDate string

	Revision  = getRevision()
	GoVersion = runtime.Version()
	GoOS      = runtime.GOOS
	GoArch    = runtime.GOARCH
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Branch    string `json:"branch,omitempty"`
	BuildUser string `json:"buildUser,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the [Info] of the running build.
func Get() Info {
	return Info{
		Version:   GetVersion(),
		Revision:  Revision,
		Branch:    Branch,
		BuildUser: BuildUser,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  GoOS + "/" + GoArch,
	}
}

func (i Info) String() string {
	s := fmt.Sprintf("kls %s (revision %s, %s, %s)", i.Version, i.Revision, i.GoVersion, i.Platform)
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}

	return s
}

func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			if len(v.Value) > 7 {
				rev = v.Value[:7]
			} else {
				rev = v.Value
			}

		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
