// svnwatch watches a directory tree containing Subversion working
// copies and automatically commits each day's changes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ariavision/svnwatch/internal/config"
	"github.com/ariavision/svnwatch/internal/vcs"
	"github.com/ariavision/svnwatch/internal/version"

	// Backend registration.
	_ "github.com/ariavision/svnwatch/internal/vcs/svncli"
	_ "github.com/ariavision/svnwatch/internal/vcs/tortoise"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "svnwatch",
	Short: "Auto-commit daily changes in Subversion working copies",
	Long: `svnwatch monitors a directory tree, discovers the Subversion working
copies nested inside it, and commits each day's changed files
automatically after a quiet period.

Changes are tracked per calendar day: a file counts as pending while
its modification time falls on the current local day. At local
midnight the slate is wiped and a new day begins.

Typical usage:
  svnwatch init                  # interactive setup, writes the config file
  svnwatch watch                 # run the watcher with the configured root
  svnwatch watch --root ~/work   # or override the root directly
  svnwatch commit                # one-shot: commit today's changes and exit
  svnwatch history --since "2 hours ago"`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default %s)", config.File()))
}

// loadConfig resolves the effective configuration for cmd: defaults,
// config file, SVNWATCH_* environment, then flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	config.BindFlags(v, cmd)
	return config.Load(v, cfgFile)
}

// buildBackend selects the commit backend from configuration.
func buildBackend(cfg config.Config) (vcs.Backend, error) {
	return vcs.Select(vcs.Options{
		SvnPath:          cfg.SvnPath,
		TortoiseProcPath: cfg.TortoiseProcPath,
		CommitBatch:      cfg.CommitBatch,
	}, cfg.UseSvnCLI)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the svnwatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
