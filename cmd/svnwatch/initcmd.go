package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/config"
	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/vcs"
	"github.com/ariavision/svnwatch/internal/wc"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup: pick a root and write the config file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Default()

		svnPath := vcs.FindSvn()
		tortoisePath := vcs.FindTortoiseProc()

		backendChoice := "svn"
		if svnPath == "" && tortoisePath != "" {
			backendChoice = "tortoiseproc"
		}

		root := ""
		if home, err := os.UserHomeDir(); err == nil {
			root = home
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Directory to watch").
					Description("Working copies anywhere under this tree are discovered automatically.").
					Value(&root).
					Validate(func(s string) error {
						info, err := os.Stat(s)
						if err != nil {
							return err
						}
						if !info.IsDir() {
							return errors.New("not a directory")
						}
						return nil
					}),
				huh.NewSelect[string]().
					Title("Commit backend").
					Description(backendAvailability(svnPath, tortoisePath)).
					Options(
						huh.NewOption("svn command line", "svn"),
						huh.NewOption("TortoiseProc", "tortoiseproc"),
					).
					Value(&backendChoice),
				huh.NewConfirm().
					Title("Run svn update before each commit cycle?").
					Value(&cfg.AutoUpdate),
				huh.NewInput().
					Title("Commit message prefix").
					Value(&cfg.CommitPrefix),
			),
		)
		if err := form.Run(); err != nil {
			fatalf("%v", err)
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			fatalf("%v", err)
		}
		cfg.Root = abs
		cfg.UseSvnCLI = backendChoice == "svn"
		if cfg.CommitPrefix == "" {
			cfg.CommitPrefix = orchestrator.DefaultPrefix
		}
		cfg.Normalize()

		path := cfgFile
		if path == "" {
			path = config.File()
		}
		if err := cfg.Write(path); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Wrote %s\n", path)

		if roots, err := wc.FindRoots(cfg.Root); err == nil {
			fmt.Printf("Found %d working copies under %s\n", len(roots), cfg.Root)
		}
		fmt.Println("Start watching with: svnwatch watch")
	},
}

func backendAvailability(svnPath, tortoisePath string) string {
	describe := func(name, path string) string {
		if path == "" {
			return name + ": not found"
		}
		return name + ": " + path
	}
	return describe("svn", svnPath) + "\n" + describe("TortoiseProc", tortoisePath)
}

func init() {
	rootCmd.AddCommand(initCmd)
}
