package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/config"
	"github.com/ariavision/svnwatch/internal/dashboard"
	"github.com/ariavision/svnwatch/internal/engine"
	"github.com/ariavision/svnwatch/internal/journal"
	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/vcs"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Watch a directory tree and auto-commit today's changes",
	Long: `Watch a directory tree for changes and commit them automatically.

The watcher polls the tree on a fixed interval (filesystem events wake
it early), records files changed on the current local day, and after a
quiet debounce window stages and commits them per working copy in
bounded batches. Failed batches stay pending and are retried on the
next cycle.

The root comes from the positional argument, the --root flag, or the
config file, in that order.`,
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
			fatalf("no root to watch; pass one or run `svnwatch init`")
		}

		log, err := logging.New(cfg.LogFile)
		if err != nil {
			fatalf("open log: %v", err)
		}
		defer log.Close()

		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			fatalf("open journal: %v", err)
		}
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		backend, err := buildBackend(cfg)
		if err != nil {
			// The watcher still runs: changes accumulate in the ledger
			// and commit once a backend shows up in config.
			log.Warning("no commit backend available: %v", err)
		} else {
			log.Info("using %s backend", backend.Name())
			warnOldClient(ctx, log, cfg)
		}

		var feed *dashboard.Feed
		var server *dashboard.Server
		var poller *dashboard.StatsPoller
		if cfg.DashboardAddr != "" {
			server = dashboard.NewServer(cfg.DashboardAddr, log)
			if err := server.Start(); err != nil {
				fatalf("%v", err)
			}
			defer server.Stop()
			feed = dashboard.NewFeed(server)
			poller = dashboard.NewStatsPoller(db, server, 0, log)
			poller.Start(ctx)
			defer poller.Stop()
			fmt.Printf("Dashboard: http://%s (ws://%s/ws)\n", server.Addr(), server.Addr())
		}

		var eng *engine.Engine
		orch := orchestrator.New(orchestrator.Config{
			Backend:      backend,
			Logger:       log,
			Journal:      db,
			Report:       reporterOrNil(feed),
			CommitPrefix: cfg.CommitPrefix,
			StageBatch:   cfg.StageBatch,
			CommitBatch:  cfg.CommitBatch,
			AutoUpdate:   cfg.AutoUpdate,
			Rebaseline: func() {
				if eng != nil {
					eng.Rebaseline()
				}
			},
		})

		eng, err = engine.New(engine.Config{
			Root:         cfg.Root,
			ScanInterval: cfg.ScanInterval(),
			Debounce:     cfg.Debounce(),
			Logger:       log,
			Committer:    orch,
			Events:       eventsOrNil(feed),
		}, time.Now())
		if err != nil {
			fatalf("%v", err)
		}

		if err := eng.Run(ctx); err != nil {
			fatalf("%v", err)
		}
	},
}

// reporterOrNil and eventsOrNil keep a nil *Feed from becoming a
// non-nil interface value.
func reporterOrNil(feed *dashboard.Feed) orchestrator.Reporter {
	if feed == nil {
		return nil
	}
	return feed
}

func eventsOrNil(feed *dashboard.Feed) engine.Events {
	if feed == nil {
		return nil
	}
	return feed
}

// warnOldClient probes the svn client version and warns on pre-1.7
// clients, whose per-directory .svn metadata breaks root discovery.
func warnOldClient(ctx context.Context, log logging.Logger, cfg config.Config) {
	svnPath := cfg.SvnPath
	if svnPath == "" {
		svnPath = vcs.FindSvn()
	}
	if svnPath == "" {
		return
	}
	v, err := vcs.ClientVersion(ctx, vcs.Run, svnPath)
	if err != nil {
		return
	}
	if vcs.PreDates17(v) {
		log.Warning("svn client %s predates 1.7; nested .svn directories will confuse working copy discovery", v)
	}
}

func init() {
	flags := watchCmd.Flags()
	flags.String("root", "", "directory tree to watch")
	flags.String("svn-path", "", "svn executable (auto-discovered when empty)")
	flags.String("tortoiseproc-path", "", "TortoiseProc executable (auto-discovered when empty)")
	flags.Bool("use-svn-cli", true, "prefer the svn CLI over TortoiseProc")
	flags.Bool("auto-update", false, "run svn update before each commit cycle")
	flags.String("commit-prefix", "", "commit message prefix")
	flags.Int("debounce-ms", config.DefaultDebounceMS, "quiet window before committing, in milliseconds")
	flags.Int("scan-ms", config.DefaultScanMS, "polling interval, in milliseconds")
	flags.Int("stage-batch", vcs.DefaultStageBatch, "paths per add/rm invocation")
	flags.Int("commit-batch", vcs.DefaultCommitBatch, "paths per commit invocation")
	flags.String("log-file", "", "log file location")
	flags.String("journal-path", "", "journal database location")
	flags.String("dashboard-addr", "", "serve the status dashboard on this address, e.g. localhost:8080")

	rootCmd.AddCommand(watchCmd)
}
