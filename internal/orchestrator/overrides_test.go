package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverrideMissing(t *testing.T) {
	ov, found, err := LoadOverride(t.TempDir())
	if err != nil || found {
		t.Fatalf("missing file: found=%v err=%v, want neither", found, err)
	}
	if ov.Disabled || ov.CommitPrefix != "" {
		t.Errorf("missing file must yield the zero override, got %+v", ov)
	}
}

func TestLoadOverrideParses(t *testing.T) {
	root := t.TempDir()
	content := `
disabled = false
commit_prefix = "Release prep"
commit_batch = 10
ignore_suffixes = [".bak", ".orig"]
`
	if err := os.WriteFile(filepath.Join(root, OverrideFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ov, found, err := LoadOverride(root)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if ov.CommitPrefix != "Release prep" || ov.CommitBatch != 10 {
		t.Errorf("override = %+v", ov)
	}
	if !ov.ignores(filepath.Join(root, "file.BAK")) {
		t.Error("suffix match must be case-insensitive")
	}
	if ov.ignores(filepath.Join(root, "file.txt")) {
		t.Error("unlisted suffix must not match")
	}
}

func TestLoadOverrideBroken(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, OverrideFileName), []byte("{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found, err := LoadOverride(root)
	if !found || err == nil {
		t.Errorf("broken file: found=%v err=%v, want found with an error", found, err)
	}
}
