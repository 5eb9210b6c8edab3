// Package version reports which build of rokuctl is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at release time:
//
//	go build -ldflags="-X github.com/muurk/rokuctl/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/rokuctl/internal/version.Commit=abc1234"
//
// Local builds fill whatever is missing from the embedded VCS stamp.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build info for this binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Version, Commit, bi)
}

// resolve merges ldflags values with the VCS stamp. ldflags win.
func resolve(version, commit string, bi *debug.BuildInfo) Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi != nil {
		var revision, stamp string
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				stamp = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}

		if info.Commit == "" && revision != "" {
			info.Commit = shortHash(revision)
		}
		if info.Version == "" {
			switch {
			case bi.Main.Version != "" && bi.Main.Version != "(devel)":
				// go install github.com/muurk/rokuctl/cmd/rokuctl@v1.2.3
				info.Version = bi.Main.Version
			case len(stamp) >= len("2006-01-02"):
				info.Version = "dev-" + strings.ReplaceAll(stamp[:len("2006-01-02")], "-", "")
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

func shortHash(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

// String returns the version and commit, e.g. "v1.2.3 (commit: abc1234)".
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s)", i.Version, commit)
}

// Full returns Get().String().
func Full() string {
	return Get().String()
}
