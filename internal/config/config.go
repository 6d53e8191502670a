// Package config loads svnwatch settings from file, environment, and
// flags via viper. Out-of-bounds numeric values are clamped rather
// than rejected, so a hand-edited config file never prevents startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/vcs"
)

// Bounded settings and their limits. Values outside a range clamp to
// the nearest bound in Normalize.
const (
	DefaultDebounceMS = 5000
	MinDebounceMS     = 500
	MaxDebounceMS     = 60000

	DefaultScanMS = 2000
	MinScanMS     = 500
	MaxScanMS     = 20000

	MinBatch = 1
	MaxBatch = 500
)

// Config is the persisted configuration the core consumes.
type Config struct {
	Root             string `mapstructure:"root" yaml:"root"`
	SvnPath          string `mapstructure:"svn_path" yaml:"svn_path,omitempty"`
	TortoiseProcPath string `mapstructure:"tortoiseproc_path" yaml:"tortoiseproc_path,omitempty"`
	UseSvnCLI        bool   `mapstructure:"use_svn_cli" yaml:"use_svn_cli"`
	AutoUpdate       bool   `mapstructure:"auto_update" yaml:"auto_update"`
	CommitPrefix     string `mapstructure:"commit_prefix" yaml:"commit_prefix"`
	DebounceMS       int    `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	ScanMS           int    `mapstructure:"scan_ms" yaml:"scan_ms"`
	StageBatch       int    `mapstructure:"stage_batch" yaml:"stage_batch"`
	CommitBatch      int    `mapstructure:"commit_batch" yaml:"commit_batch"`
	LogFile          string `mapstructure:"log_file" yaml:"log_file,omitempty"`
	JournalPath      string `mapstructure:"journal_path" yaml:"journal_path,omitempty"`
	DashboardAddr    string `mapstructure:"dashboard_addr" yaml:"dashboard_addr,omitempty"`
}

// Default returns the built-in configuration: executables
// auto-discovered, state files under the per-user state directory,
// dashboard disabled.
func Default() Config {
	return Config{
		UseSvnCLI:    true,
		CommitPrefix: orchestrator.DefaultPrefix,
		DebounceMS:   DefaultDebounceMS,
		ScanMS:       DefaultScanMS,
		StageBatch:   vcs.DefaultStageBatch,
		CommitBatch:  vcs.DefaultCommitBatch,
	}
}

// Dir returns the configuration directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "svnwatch")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "svnwatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".svnwatch")
}

// File returns the default config file path.
func File() string { return filepath.Join(Dir(), "config.yaml") }

// StateDir returns where the log and journal live by default.
func StateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "svnwatch")
	}
	return Dir()
}

// Load reads configuration in precedence order: defaults, then the
// config file (cfgFile when given, else the default location), then
// SVNWATCH_* environment variables, then any flags already bound on v.
// A missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix("SVNWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Absent config files are fine; only a present-but-broken
		// file is surfaced.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// BindFlags binds the standard override flags to v. Call before Load.
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	flags := cmd.Flags()
	for _, key := range []string{
		"root", "svn_path", "tortoiseproc_path", "use_svn_cli", "auto_update",
		"commit_prefix", "debounce_ms", "scan_ms", "stage_batch", "commit_batch",
		"log_file", "journal_path", "dashboard_addr",
	} {
		if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("root", def.Root)
	v.SetDefault("svn_path", def.SvnPath)
	v.SetDefault("tortoiseproc_path", def.TortoiseProcPath)
	v.SetDefault("use_svn_cli", def.UseSvnCLI)
	v.SetDefault("auto_update", def.AutoUpdate)
	v.SetDefault("commit_prefix", def.CommitPrefix)
	v.SetDefault("debounce_ms", def.DebounceMS)
	v.SetDefault("scan_ms", def.ScanMS)
	v.SetDefault("stage_batch", def.StageBatch)
	v.SetDefault("commit_batch", def.CommitBatch)
	v.SetDefault("log_file", "")
	v.SetDefault("journal_path", "")
	v.SetDefault("dashboard_addr", "")
}

// Normalize clamps bounded values and fills derived defaults. It never
// fails: a bad value becomes the nearest legal one.
func (c *Config) Normalize() {
	c.DebounceMS = clamp(c.DebounceMS, MinDebounceMS, MaxDebounceMS)
	c.ScanMS = clamp(c.ScanMS, MinScanMS, MaxScanMS)
	c.StageBatch = clamp(c.StageBatch, MinBatch, MaxBatch)
	c.CommitBatch = clamp(c.CommitBatch, MinBatch, MaxBatch)

	c.CommitPrefix = strings.TrimSpace(c.CommitPrefix)
	if c.CommitPrefix == "" {
		c.CommitPrefix = orchestrator.DefaultPrefix
	}
	if c.Root != "" {
		if abs, err := filepath.Abs(c.Root); err == nil {
			c.Root = abs
		}
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(StateDir(), "svnwatch.log")
	}
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(StateDir(), "journal.db")
	}
}

// Debounce returns the debounce window as a duration.
func (c Config) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }

// ScanInterval returns the scan period as a duration.
func (c Config) ScanInterval() time.Duration { return time.Duration(c.ScanMS) * time.Millisecond }

// Render returns the effective settings as YAML, for `config show`.
func (c Config) Render() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(out), nil
}

// Write persists c as YAML to path, creating parent directories.
func (c Config) Write(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
