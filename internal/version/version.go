// Where: internal/version/version.go
// What: Version string resolution.
// Why: Releases stamp a version; dev builds fall back to VCS metadata.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is stamped at build time:
//
//	go build -ldflags "-X github.com/toxa-dev/toxa/internal/version.Version=v1.2.3"
//
// When empty, the version is derived from VCS build info.
var Version string

const fallback = "dev"

// GetVersion returns the stamped version, or the short VCS revision with
// a "(dirty)" suffix when the tree was modified, or "dev" when neither is
// available.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	revision, modified := vcsState(info)
	if revision == "" {
		return fallback
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}

func vcsState(info *debug.BuildInfo) (revision string, modified bool) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return revision, modified
}
