// Package snapshot captures lightweight filesystem state for change
// detection. A snapshot maps every regular file under a root to its
// (mtime, size) fingerprint; comparing two snapshots yields the paths
// that were added, removed, or modified in between.
//
// Fingerprints deliberately avoid content hashing: mtime+size is cheap
// enough to run every couple of seconds over large trees and is accurate
// enough for commit triggering, where a false positive costs one no-op
// commit attempt and a false negative is caught by the next real change.
package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MetaDirName is the Subversion metadata directory. Scans never descend
// into it and it never appears in a snapshot.
const MetaDirName = ".svn"

// transientSuffixes are file endings that editors and build tools churn
// constantly. Matching is case-insensitive on the base name.
var transientSuffixes = []string{".tmp", ".swp", ".swo", ".pyc", ".pyo", "~"}

// Fingerprint identifies one file's state without reading its content.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
}

// Equal reports whether two fingerprints describe the same state.
// Times are compared with time.Time.Equal, not ==, so wall-clock
// representations from different stat calls compare correctly.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

// Snapshot maps absolute file paths to fingerprints. A snapshot is
// produced fresh by Scan and must be treated as immutable afterwards.
type Snapshot map[string]Fingerprint

// Skip records a path that was deliberately omitted from a scan because
// it could not be inspected (vanished mid-walk, permission denied,
// dangling symlink). Skips are not errors: the scan succeeded without
// the entry. They exist so callers and tests can tell an intentional
// omission from a silent fault.
type Skip struct {
	Path string
	Err  error
}

// IsIgnored reports whether a path never participates in snapshots:
// the SVN metadata directory itself, or a transient artifact suffix.
func IsIgnored(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if name == MetaDirName {
		return true
	}
	for _, suffix := range transientSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Scan walks root and returns a snapshot of every regular file beneath
// it, plus the skip records for entries that could not be inspected.
//
// .svn directories are skipped without descending. Ignored file names
// are omitted. Fingerprints come from os.Stat, so symlinks are followed
// the way the rest of the pipeline (re-validation, staging) sees them;
// a dangling link becomes a Skip. A nonexistent root yields an empty
// snapshot with one Skip rather than an error — the watch loop treats
// every filesystem hiccup as "omit and carry on".
func Scan(root string) (Snapshot, []Skip) {
	state := make(Snapshot)
	var skips []Skip

	// WalkDir never returns an error here because the callback swallows
	// everything into skip records.
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skips = append(skips, Skip{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if strings.EqualFold(d.Name(), MetaDirName) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsIgnored(path) {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			skips = append(skips, Skip{Path: path, Err: err})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		state[path] = Fingerprint{ModTime: info.ModTime(), Size: info.Size()}
		return nil
	})

	return state, skips
}
