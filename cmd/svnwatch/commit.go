package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/journal"
	"github.com/ariavision/svnwatch/internal/ledger"
	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/snapshot"
	"github.com/ariavision/svnwatch/internal/vcs"
	"github.com/ariavision/svnwatch/internal/wc"
)

var commitCmd = &cobra.Command{
	Use:   "commit [root]",
	Short: "Commit today's changes once and exit",
	Long: `Scan the tree once, collect every file modified on the current local
day, and commit it per working copy. No watching, no debounce.

A single scan cannot distinguish a new file from a modified one, so
everything is staged with 'svn add --force' (a no-op for versioned
paths) and committed. Deletions are not detected in one-shot mode;
only the watcher sees them happen.`,
	Args: cobra.MaximumNArgs(1),
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

		log := logging.NewConsole(os.Stderr)

		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			fatalf("open journal: %v", err)
		}
		defer db.Close()

		backend, err := buildBackend(cfg)
		if err != nil {
			fatalf("%v", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		roots, err := wc.FindRoots(cfg.Root)
		if err != nil {
			fatalf("%v", err)
		}
		if len(roots) == 0 {
			fmt.Println("No working copies found; nothing to commit.")
			return
		}

		now := time.Now()
		led := ledger.New(now)
		led.SetRoots(wc.NewSet(roots))

		snap, _ := snapshot.Scan(cfg.Root)
		for path, entry := range snap {
			if !entry.ModTime.Before(led.DayStart()) {
				led.Record(ledger.Added, path, entry.ModTime)
			}
		}
		if led.Len() == 0 {
			fmt.Println("No files changed today; nothing to commit.")
			return
		}
		fmt.Printf("Committing %d files across %d working copies...\n",
			led.Len(), len(led.WorkingCopies()))

		orch := orchestrator.New(orchestrator.Config{
			Backend:      backend,
			Logger:       log,
			Journal:      db,
			CommitPrefix: cfg.CommitPrefix,
			StageBatch:   cfg.StageBatch,
			CommitBatch:  cfg.CommitBatch,
			AutoUpdate:   cfg.AutoUpdate,
		})
		sum := orch.CommitToday(ctx, now, led)

		fmt.Printf("Committed %d, failed %d.\n", sum.Committed, sum.Failed)
		if sum.Failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	flags := commitCmd.Flags()
	flags.String("root", "", "directory tree to scan")
	flags.String("svn-path", "", "svn executable (auto-discovered when empty)")
	flags.String("tortoiseproc-path", "", "TortoiseProc executable (auto-discovered when empty)")
	flags.Bool("use-svn-cli", true, "prefer the svn CLI over TortoiseProc")
	flags.Bool("auto-update", false, "run svn update before committing")
	flags.String("commit-prefix", "", "commit message prefix")
	flags.Int("stage-batch", vcs.DefaultStageBatch, "paths per add/rm invocation")
	flags.Int("commit-batch", vcs.DefaultCommitBatch, "paths per commit invocation")
	flags.String("journal-path", "", "journal database location")

	rootCmd.AddCommand(commitCmd)
}
