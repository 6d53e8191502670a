package vcs

import "errors"

// Sentinel errors for backend resolution and execution. Call sites
// branch with errors.Is; everything here degrades to "log and retry
// next cycle", never to a process exit.
var (
	// ErrBackendNotFound means no usable svn executable could be
	// resolved from configuration, PATH, or well-known install
	// locations. Commits are skipped until it is resolved.
	ErrBackendNotFound = errors.New("no svn backend executable found")

	// ErrUnknownKind means a backend kind string matched no
	// registered constructor.
	ErrUnknownKind = errors.New("unknown backend kind")

	// ErrTimeout marks an invocation that was killed after its
	// timeout. The Outcome carries ExitSpawnFailure.
	ErrTimeout = errors.New("invocation timed out")

	// ErrVersionUnknown means the client version probe produced no
	// parseable version string.
	ErrVersionUnknown = errors.New("svn client version not detected")
)

// IsNotFound reports whether err stems from backend resolution failing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBackendNotFound)
}
