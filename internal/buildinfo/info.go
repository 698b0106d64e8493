// Package buildinfo holds the version of the arrears binary, stamped at
// build time with
//
//	-ldflags "-X github.com/cleared-dev/arrears/internal/buildinfo.Version=..."
package buildinfo

var (
	// Version is the release tag; "dev" for local builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
