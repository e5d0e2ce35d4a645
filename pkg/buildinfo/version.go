// Package buildinfo carries version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/flowlane/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/flowlane/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/flowlane/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Version also ends up in every exported document (exporterVersion) and in
// document cache keys, so a new release never serves stale diagrams.
package buildinfo

import "fmt"

var (
	// Version is the semantic version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the multi-line build summary printed by `flowlane version`.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// ExporterVersion is the value written to a document's exporterVersion.
func ExporterVersion() string {
	if Commit == "none" || len(Commit) < 7 {
		return Version
	}
	return Version + "+" + Commit[:7]
}
