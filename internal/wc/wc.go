// Package wc discovers Subversion working copies under a watched tree
// and answers which working copy owns a given path.
//
// A working copy is any directory with a .svn child. Nested working
// copies (externals checked out inside a parent copy) are independent:
// each has its own .svn and is found on its own. Ownership resolves to
// the most specific root, so a file inside an external belongs to the
// external, not to the enclosing copy.
package wc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MetaDirName marks the top of a working copy.
const MetaDirName = ".svn"

// ErrNotDirectory is returned when root discovery is pointed at
// something that is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FindRoots walks root and returns every directory holding a .svn child,
// including nested externals, deduplicated and ordered (see SortRoots).
// Unreadable subtrees are silently skipped; discovery is best-effort.
func FindRoots(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("working copy discovery: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working copy discovery: %s: %w", root, ErrNotDirectory)
	}

	var roots []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), MetaDirName) {
			// The parent of a .svn directory is a working copy root.
			// Never descend into the metadata itself.
			roots = append(roots, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})

	SortRoots(roots)
	return dedupe(roots), nil
}

// SortRoots orders roots by path length ascending, then case-insensitive
// lexicographic. Shorter (shallower) roots come first, which makes the
// ordering stable for display and gives deterministic iteration.
func SortRoots(roots []string) {
	sort.Slice(roots, func(i, j int) bool {
		if len(roots[i]) != len(roots[j]) {
			return len(roots[i]) < len(roots[j])
		}
		return strings.ToLower(roots[i]) < strings.ToLower(roots[j])
	})
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for _, r := range sorted {
		if len(out) == 0 || out[len(out)-1] != r {
			out = append(out, r)
		}
	}
	return out
}

// IsSubPath reports whether target lies inside base (or equals it).
// The check works on path segments via filepath.Rel, never on string
// prefixes: /root/foo is not under /root/f, and a directory literally
// named "..x" is still inside its parent.
func IsSubPath(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// Set is an immutable, ordered collection of working copy roots.
type Set struct {
	roots []string
}

// NewSet copies, orders, and deduplicates roots into a Set.
func NewSet(roots []string) *Set {
	cp := make([]string, len(roots))
	copy(cp, roots)
	SortRoots(cp)
	return &Set{roots: dedupe(cp)}
}

// Roots returns the ordered roots. The slice is a copy.
func (s *Set) Roots() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// Len is the number of roots in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.roots)
}

// Has reports whether root is a member of the set.
func (s *Set) Has(root string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.roots {
		if r == root {
			return true
		}
	}
	return false
}

// OwnerOf resolves the working copy that owns path: the longest root
// that is an ancestor of (or equal to) path. Ties cannot occur because
// roots are deduplicated directory paths. The second return is false
// when no root contains the path.
func (s *Set) OwnerOf(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	best := ""
	found := false
	for _, root := range s.roots {
		if !IsSubPath(root, path) {
			continue
		}
		if !found || len(root) > len(best) {
			best = root
			found = true
		}
	}
	return best, found
}
