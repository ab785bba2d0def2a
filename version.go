package tercume

import "runtime/debug"

// Name is the application name used in logs and the HTTP user agent.
const Name = "tercume"

// Build information, set at link time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/tercume.Version=1.2.0 -X github.com/ZaguanLabs/tercume.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	if GitCommit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			GitCommit = s.Value
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		}
	}
}

// ShortCommit returns the first seven characters of GitCommit.
func ShortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// UserAgent is sent by the HTTP providers.
func UserAgent() string {
	return Name + "/" + Version
}
