package snapshot

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanCollectsRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	writeFile(t, filepath.Join(root, "sub", "b.go"), "package b")

	snap, skips := Scan(root)
	if len(skips) != 0 {
		t.Fatalf("expected no skips, got %v", skips)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(snap), snap)
	}

	fp, ok := snap[filepath.Join(root, "a.txt")]
	if !ok {
		t.Fatal("a.txt missing from snapshot")
	}
	if fp.Size != int64(len("hello")) {
		t.Errorf("a.txt size = %d, want %d", fp.Size, len("hello"))
	}
	if fp.ModTime.IsZero() {
		t.Error("a.txt mtime is zero")
	}
}

func TestScanSkipsMetadataAndTransientFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "x")
	writeFile(t, filepath.Join(root, "sub", "keep2.txt"), "x")

	// Never descended into, regardless of case.
	writeFile(t, filepath.Join(root, ".svn", "entries"), "x")
	writeFile(t, filepath.Join(root, "sub", ".SVN", "wc.db"), "x")

	// Transient suffixes, case-insensitive.
	for _, name := range []string{"a.tmp", "B.TMP", "c.swp", "d.swo", "e.pyc", "f.pyo", "g.txt~"} {
		writeFile(t, filepath.Join(root, name), "x")
	}

	snap, skips := Scan(root)
	if len(skips) != 0 {
		t.Fatalf("expected no skips, got %v", skips)
	}

	want := []string{
		filepath.Join(root, "keep.txt"),
		filepath.Join(root, "sub", "keep2.txt"),
	}
	if len(snap) != len(want) {
		t.Fatalf("snapshot has %d entries, want %d: %v", len(snap), len(want), snap)
	}
	for _, path := range want {
		if _, ok := snap[path]; !ok {
			t.Errorf("missing %s", path)
		}
	}
}

func TestScanMissingRootIsSkipNotError(t *testing.T) {
	snap, skips := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}
	if len(skips) != 1 {
		t.Fatalf("expected exactly one skip record, got %d", len(skips))
	}
	if skips[0].Err == nil {
		t.Error("skip record has nil error")
	}
}

func TestScanDanglingSymlinkBecomesSkip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privilege on windows")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), "x")
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	snap, skips := Scan(root)
	if _, ok := snap[filepath.Join(root, "real.txt")]; !ok {
		t.Fatal("real.txt missing")
	}
	if _, ok := snap[filepath.Join(root, "dangling")]; ok {
		t.Error("dangling symlink should not be fingerprinted")
	}
	if len(skips) != 1 {
		t.Fatalf("expected one skip for the dangling link, got %d", len(skips))
	}
	if skips[0].Path != filepath.Join(root, "dangling") {
		t.Errorf("skip path = %s, want the dangling link", skips[0].Path)
	}
}

func TestIsIgnored(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/x/file.txt", false},
		{"/x/file.tmp", true},
		{"/x/FILE.TMP", true},
		{"/x/.file.swp", true},
		{"/x/a.swo", true},
		{"/x/mod.pyc", true},
		{"/x/mod.pyo", true},
		{"/x/backup~", true},
		{"/x/.svn", true},
		{"/x/notsvn", false},
		{"/x/tmp.doc", false},
	}
	for _, tc := range cases {
		if got := IsIgnored(tc.path); got != tc.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func fp(sec int64, size int64) Fingerprint {
	return Fingerprint{ModTime: time.Unix(sec, 0), Size: size}
}

func TestDiffClassifiesChanges(t *testing.T) {
	before := Snapshot{
		"/r/stable":   fp(100, 1),
		"/r/modified": fp(100, 2),
		"/r/resized":  fp(100, 3),
		"/r/removed":  fp(100, 4),
	}
	after := Snapshot{
		"/r/stable":   fp(100, 1),
		"/r/modified": fp(200, 2),
		"/r/resized":  fp(100, 9),
		"/r/added":    fp(300, 5),
	}

	ch := Diff(before, after)
	if got, want := ch.Added, []string{"/r/added"}; !equalStrings(got, want) {
		t.Errorf("added = %v, want %v", got, want)
	}
	if got, want := ch.Removed, []string{"/r/removed"}; !equalStrings(got, want) {
		t.Errorf("removed = %v, want %v", got, want)
	}
	if got, want := ch.Modified, []string{"/r/modified", "/r/resized"}; !equalStrings(got, want) {
		t.Errorf("modified = %v, want %v", got, want)
	}
	if ch.Total() != 4 {
		t.Errorf("total = %d, want 4", ch.Total())
	}
}

func TestDiffSetsAreDisjoint(t *testing.T) {
	before := Snapshot{"/a": fp(1, 1), "/b": fp(2, 2), "/c": fp(3, 3)}
	after := Snapshot{"/b": fp(2, 2), "/c": fp(9, 3), "/d": fp(4, 4)}

	ch := Diff(before, after)
	seen := map[string]string{}
	for set, paths := range map[string][]string{
		"added": ch.Added, "removed": ch.Removed, "modified": ch.Modified,
	} {
		for _, p := range paths {
			if prev, dup := seen[p]; dup {
				t.Errorf("path %s appears in both %s and %s", p, prev, set)
			}
			seen[p] = set
		}
	}
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	s := Snapshot{"/a": fp(1, 1), "/b": fp(2, 2)}
	if ch := Diff(s, s); !ch.Empty() {
		t.Errorf("diff of identical snapshots not empty: %+v", ch)
	}
	if ch := Diff(nil, nil); !ch.Empty() {
		t.Errorf("diff of nil snapshots not empty: %+v", ch)
	}
}

// A file deleted and recreated between scans with the same mtime and size
// is indistinguishable from an unchanged file. That is accepted behavior,
// not a defect: the differ compares states, not event streams.
func TestDiffBlinkWithIdenticalFingerprintIsInvisible(t *testing.T) {
	before := Snapshot{"/r/blink": fp(100, 7)}
	after := Snapshot{"/r/blink": fp(100, 7)}
	if ch := Diff(before, after); !ch.Empty() {
		t.Errorf("blinked file reported as changed: %+v", ch)
	}
}

func TestFingerprintEqualUsesTimeEquality(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Fingerprint{ModTime: utc, Size: 1}
	b := Fingerprint{ModTime: utc.Local(), Size: 1}
	if !a.Equal(b) {
		t.Error("same instant in different locations should compare equal")
	}
	if a.Equal(Fingerprint{ModTime: utc, Size: 2}) {
		t.Error("different sizes should not compare equal")
	}
	if a.Equal(Fingerprint{ModTime: utc.Add(time.Second), Size: 1}) {
		t.Error("different times should not compare equal")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
