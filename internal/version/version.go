// Package version holds the application identity stamped into commit
// messages and the version command.
package version

const (
	Name    = "svnwatch"
	Version = "2.1.0"
)

// Full is the "name version" form used in commit message suffixes.
func Full() string { return Name + " " + Version }
