// Package version reports which derivegen build is running.
//
// Release builds stamp the variables below with the linker:
//
//	go build -ldflags "\
//	  -X github.com/teranos/derivegen/version.Version=v0.3.0 \
//	  -X github.com/teranos/derivegen/version.CommitHash=$(git rev-parse HEAD) \
//	  -X github.com/teranos/derivegen/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/derivegen
//
// Binaries from `go install github.com/teranos/derivegen/cmd/derivegen@vX`
// carry no ldflags; their module version and VCS stamp fill the gaps.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const unset = "dev"

var (
	Version    = unset
	CommitHash = unset
	BuildTime  = "unknown"
)

// Info is what `derivegen version --json` prints.
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo fills fields the linker did not set from the module build
// info. "(devel)" is what the go command records for a local checkout.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == unset && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == unset {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// Release reports whether the binary carries a real version. min_version
// is only enforced for releases.
func (i Info) Release() bool {
	return i.Version != "" && i.Version != unset
}

// Semver is the version without a leading "v", or "" for development builds.
func (i Info) Semver() string {
	if !i.Release() {
		return ""
	}
	return strings.TrimPrefix(i.Version, "v")
}

func (i Info) String() string {
	return fmt.Sprintf("derivegen %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short is the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) > 12 {
		return i.CommitHash[:12]
	}
	return i.CommitHash
}
