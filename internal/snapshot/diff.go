package snapshot

import "sort"

// Changes is the outcome of comparing two snapshots. The three slices
// are pairwise disjoint and sorted, so downstream chunking and logging
// are deterministic.
type Changes struct {
	Added    []string // present after, absent before
	Removed  []string // present before, absent after
	Modified []string // present in both with a different fingerprint
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Total is the number of changed paths across all three sets.
func (c Changes) Total() int {
	return len(c.Added) + len(c.Removed) + len(c.Modified)
}

// Diff compares two snapshots. Pure: neither input is mutated and no
// filesystem access happens. Diff(s, s) is empty.
//
// A file deleted and recreated with an identical fingerprint between
// the two scans is invisible here; the differ sees states, not history.
func Diff(before, after Snapshot) Changes {
	var ch Changes

	for path, fp := range after {
		prev, ok := before[path]
		switch {
		case !ok:
			ch.Added = append(ch.Added, path)
		case !prev.Equal(fp):
			ch.Modified = append(ch.Modified, path)
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			ch.Removed = append(ch.Removed, path)
		}
	}

	sort.Strings(ch.Added)
	sort.Strings(ch.Removed)
	sort.Strings(ch.Modified)
	return ch
}
