package orchestrator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// OverrideFileName is looked for directly under each working copy root.
const OverrideFileName = ".svnwatch.toml"

// Override carries per-working-copy tuning. Overrides apply at
// orchestration time only; detection and the ledger guard stay global.
type Override struct {
	// Disabled skips this working copy entirely; its ledger entries
	// sit untouched until the midnight reset.
	Disabled bool `toml:"disabled"`

	// CommitPrefix replaces the global commit message prefix.
	CommitPrefix string `toml:"commit_prefix"`

	// CommitBatch replaces the commit batch size.
	CommitBatch int `toml:"commit_batch"`

	// IgnoreSuffixes are extra transient suffixes filtered out of
	// the commit view, case-insensitive on the base name.
	IgnoreSuffixes []string `toml:"ignore_suffixes"`
}

// LoadOverride reads root's override file. The second return is false
// when no file exists; a parse error returns the zero Override so a
// broken file never blocks commits.
func LoadOverride(root string) (Override, bool, error) {
	path := filepath.Join(root, OverrideFileName)
	if _, err := os.Stat(path); err != nil {
		return Override{}, false, nil
	}

	var ov Override
	if _, err := toml.DecodeFile(path, &ov); err != nil {
		return Override{}, true, err
	}
	return ov, true, nil
}

// ignores reports whether path matches one of the override's extra
// transient suffixes.
func (ov Override) ignores(path string) bool {
	if len(ov.IgnoreSuffixes) == 0 {
		return false
	}
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range ov.IgnoreSuffixes {
		if suffix != "" && strings.HasSuffix(name, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}
