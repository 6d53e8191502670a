// Package ledger tracks, per working copy, the paths that changed on the
// current local calendar day and are still waiting to be committed.
//
// Deletions carry the time they were *detected*, not the time they
// happened — a removed file has no retrievable timestamp, so "deleted
// today" deliberately means "noticed today". That is a policy choice
// inherited from the tool's history, not an accident.
//
// A Ledger is not safe for concurrent use. The change-detection engine
// is its only mutator; everything it hands out is a copy.
package ledger

import (
	"time"

	"github.com/ariavision/svnwatch/internal/snapshot"
	"github.com/ariavision/svnwatch/internal/wc"
)

// Kind classifies a pending change. Kinds are mutually exclusive per
// (working copy, path): a later detection overwrites an earlier one.
type Kind uint8

const (
	Added Kind = iota
	Modified
	Deleted
)

// String returns the lowercase name, for logs and errors.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Short returns the single-letter form used in journal rows and
// compact log lines.
func (k Kind) Short() string {
	switch k {
	case Added:
		return "A"
	case Modified:
		return "M"
	case Deleted:
		return "D"
	default:
		return "?"
	}
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Ledger holds the per-working-copy "changed today" entries and the
// start-of-day instant they are scoped to.
type Ledger struct {
	dayStart time.Time
	roots    *wc.Set
	entries  map[string]map[string]Kind
}

// New returns an empty ledger tracking the day that contains now.
// Call SetRoots before recording; without roots nothing is owned and
// nothing is recorded.
func New(now time.Time) *Ledger {
	return &Ledger{
		dayStart: StartOfDay(now),
		roots:    wc.NewSet(nil),
		entries:  make(map[string]map[string]Kind),
	}
}

// DayStart is the start of the currently tracked day.
func (l *Ledger) DayStart() time.Time { return l.dayStart }

// RolloverDue reports whether the tracked day is over: now is at or past
// dayStart + 24h. Checked every tick so a machine left running overnight
// rolls over at the first tick after midnight.
func (l *Ledger) RolloverDue(now time.Time) bool {
	return !now.Before(l.dayStart.Add(24 * time.Hour))
}

// Reset clears every working copy's entries and re-stamps the tracked
// day to the one containing now. The day start is recomputed from the
// wall clock, so a DST shift corrects itself at the next rollover.
func (l *Ledger) Reset(now time.Time) {
	l.dayStart = StartOfDay(now)
	l.entries = make(map[string]map[string]Kind, l.roots.Len())
	for _, root := range l.roots.Roots() {
		l.entries[root] = make(map[string]Kind)
	}
}

// SetRoots adopts a freshly discovered root set. All entries are wiped:
// ownership may have changed, so stale bookkeeping is discarded rather
// than migrated.
func (l *Ledger) SetRoots(set *wc.Set) {
	if set == nil {
		set = wc.NewSet(nil)
	}
	l.roots = set
	l.entries = make(map[string]map[string]Kind, set.Len())
	for _, root := range set.Roots() {
		l.entries[root] = make(map[string]Kind)
	}
}

// Roots returns all known working copy roots in stable order, whether or
// not they currently hold entries.
func (l *Ledger) Roots() []string { return l.roots.Roots() }

// Record notes one change if it belongs in today's ledger. The entry is
// stored when all of these hold:
//
//   - detectedAt is on/after the tracked day start (boundary inclusive:
//     exactly midnight is in, a millisecond before is out);
//   - the path is not an ignored transient;
//   - some known working copy owns the path.
//
// For Added/Modified the caller passes the file's modification time; for
// Deleted it passes the detection instant (see the package comment).
// Returns true when the entry was stored or overwritten.
func (l *Ledger) Record(kind Kind, path string, detectedAt time.Time) bool {
	if detectedAt.Before(l.dayStart) {
		return false
	}
	if snapshot.IsIgnored(path) {
		return false
	}
	owner, ok := l.roots.OwnerOf(path)
	if !ok {
		return false
	}
	inner := l.entries[owner]
	if inner == nil {
		inner = make(map[string]Kind)
		l.entries[owner] = inner
	}
	inner[path] = kind
	return true
}

// Entries returns a copy of one working copy's pending entries.
func (l *Ledger) Entries(root string) map[string]Kind {
	inner := l.entries[root]
	out := make(map[string]Kind, len(inner))
	for p, k := range inner {
		out[p] = k
	}
	return out
}

// Remove prunes a single entry, typically after its chunk committed.
func (l *Ledger) Remove(root, path string) {
	if inner := l.entries[root]; inner != nil {
		delete(inner, path)
	}
}

// WorkingCopies returns the roots that currently hold entries, in the
// set's stable order.
func (l *Ledger) WorkingCopies() []string {
	var out []string
	for _, root := range l.roots.Roots() {
		if len(l.entries[root]) > 0 {
			out = append(out, root)
		}
	}
	return out
}

// Len is the total number of pending entries across all working copies.
func (l *Ledger) Len() int {
	n := 0
	for _, inner := range l.entries {
		n += len(inner)
	}
	return n
}
