// Package version exposes build metadata stamped at link time.
package version

// Overridden with -ldflags "-X github.com/kailas-cloud/quizdex/internal/version.Version=..."
// by the release build; the zero values identify a local dev binary.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the metadata as a single version line.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
