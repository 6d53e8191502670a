package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/wc"
)

var updateCmd = &cobra.Command{
	Use:   "update [root]",
	Short: "Run svn update across every working copy under the root",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fatalf("%v", err)
		}
		if len(args) == 1 {
			cfg.Root = args[0]
			cfg.Normalize()
		}
		if cfg.Root == "" {
			fatalf("no root; pass one or run `svnwatch init`")
		}

		backend, err := buildBackend(cfg)
		if err != nil {
			fatalf("%v", err)
		}

		roots, err := wc.FindRoots(cfg.Root)
		if err != nil {
			fatalf("%v", err)
		}
		if len(roots) == 0 {
			fmt.Println("No working copies found.")
			return
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("Updating %d working copies...\n", len(roots))
		orch := orchestrator.New(orchestrator.Config{
			Backend: backend,
			Logger:  logging.NewConsole(os.Stderr),
		})
		if !orch.UpdateAll(ctx, roots) {
			fatalf("no update ran")
		}
	},
}

func init() {
	flags := updateCmd.Flags()
	flags.String("root", "", "directory tree to scan")
	flags.String("svn-path", "", "svn executable (auto-discovered when empty)")
	flags.String("tortoiseproc-path", "", "TortoiseProc executable (auto-discovered when empty)")
	flags.Bool("use-svn-cli", true, "prefer the svn CLI over TortoiseProc")

	rootCmd.AddCommand(updateCmd)
}
