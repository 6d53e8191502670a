package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ariavision/svnwatch/internal/orchestrator"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if !cfg.UseSvnCLI {
		t.Error("svn CLI must be preferred by default")
	}
	if cfg.CommitPrefix != orchestrator.DefaultPrefix {
		t.Errorf("prefix = %q", cfg.CommitPrefix)
	}
	cfg.Normalize()
	if cfg.Debounce() != 5*time.Second {
		t.Errorf("debounce = %v, want 5s", cfg.Debounce())
	}
	if cfg.ScanInterval() != 2*time.Second {
		t.Errorf("scan interval = %v, want 2s", cfg.ScanInterval())
	}
}

func TestNormalizeClampsBounds(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(t *testing.T, c Config)
	}{
		{
			name: "below minimums",
			in:   Config{DebounceMS: 1, ScanMS: 0, StageBatch: -5, CommitBatch: 0},
			check: func(t *testing.T, c Config) {
				if c.DebounceMS != MinDebounceMS {
					t.Errorf("debounce = %d, want clamped to %d", c.DebounceMS, MinDebounceMS)
				}
				if c.ScanMS != MinScanMS {
					t.Errorf("scan = %d, want clamped to %d", c.ScanMS, MinScanMS)
				}
				if c.StageBatch != MinBatch || c.CommitBatch != MinBatch {
					t.Errorf("batches = %d/%d, want clamped to %d", c.StageBatch, c.CommitBatch, MinBatch)
				}
			},
		},
		{
			name: "above maximums",
			in:   Config{DebounceMS: 1 << 30, ScanMS: 99999, StageBatch: 9999, CommitBatch: 9999},
			check: func(t *testing.T, c Config) {
				if c.DebounceMS != MaxDebounceMS || c.ScanMS != MaxScanMS {
					t.Errorf("intervals = %d/%d, want clamped to maxima", c.DebounceMS, c.ScanMS)
				}
				if c.StageBatch != MaxBatch || c.CommitBatch != MaxBatch {
					t.Errorf("batches = %d/%d, want clamped to %d", c.StageBatch, c.CommitBatch, MaxBatch)
				}
			},
		},
		{
			name: "in range untouched",
			in:   Config{DebounceMS: 7000, ScanMS: 3000, StageBatch: 50, CommitBatch: 80},
			check: func(t *testing.T, c Config) {
				if c.DebounceMS != 7000 || c.ScanMS != 3000 || c.StageBatch != 50 || c.CommitBatch != 80 {
					t.Errorf("in-range values changed: %+v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			tt.check(t, tt.in)
		})
	}
}

func TestNormalizeFillsDerivedDefaults(t *testing.T) {
	c := Config{CommitPrefix: "   "}
	c.Normalize()
	if c.CommitPrefix != orchestrator.DefaultPrefix {
		t.Errorf("blank prefix = %q, want the default restored", c.CommitPrefix)
	}
	if c.LogFile == "" || c.JournalPath == "" {
		t.Error("state paths must be filled in")
	}

	c = Config{Root: "relative/dir"}
	c.Normalize()
	if !filepath.IsAbs(c.Root) {
		t.Errorf("root = %q, want absolute", c.Root)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
root: /work/projects
debounce_ms: 120000
commit_prefix: "Nightly"
auto_update: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != filepath.FromSlash("/work/projects") {
		t.Errorf("root = %q", cfg.Root)
	}
	if cfg.CommitPrefix != "Nightly" || !cfg.AutoUpdate {
		t.Errorf("cfg = %+v", cfg)
	}
	// Out-of-range file values clamp instead of failing startup.
	if cfg.DebounceMS != MaxDebounceMS {
		t.Errorf("debounce = %d, want clamped to %d", cfg.DebounceMS, MaxDebounceMS)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}
	if cfg.DebounceMS != DefaultDebounceMS {
		t.Errorf("debounce = %d, want the default", cfg.DebounceMS)
	}
}

func TestLoadBrokenFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("root: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(viper.New(), path); err == nil {
		t.Error("present-but-broken config must surface an error")
	}
}

func TestRenderRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Root = "/work"
	cfg.Normalize()

	out, err := cfg.Render()
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"root:", "debounce_ms:", "commit_prefix:"} {
		if !strings.Contains(out, key) {
			t.Errorf("rendered config missing %q:\n%s", key, out)
		}
	}
}

func TestWriteCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.yaml")
	cfg := Default()
	if err := cfg.Write(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
