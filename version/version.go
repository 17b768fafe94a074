// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X github.com/jackzampolin/fable/version.GitRelease=v0.1.0 ..."
package version

import "runtime"

var (
	// GitRelease is the release tag, or "dev" for untagged builds.
	GitRelease = "dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"

	// GitCommitDate is the commit date.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain the binary was built with.
	GoInfo = runtime.Version()
)
