package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show what svnwatch has been doing",
	Long: `Query the journal of external tool invocations and commit cycles.

--since accepts a timestamp ("2026-08-28", "2026-08-28 14:00:00",
RFC 3339) or natural language ("2 hours ago", "yesterday").

Examples:
  svnwatch history                        # last 20 invocations
  svnwatch history --failed               # only failures
  svnwatch history --root /work/proj      # one working copy
  svnwatch history --cycles               # commit cycles instead
  svnwatch history --stats --since today  # aggregate numbers
  svnwatch history --export dump.jsonl    # machine-readable dump`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fatalf("%v", err)
		}

		sinceArg, _ := cmd.Flags().GetString("since")
		rootArg, _ := cmd.Flags().GetString("root")
		failed, _ := cmd.Flags().GetBool("failed")
		limit, _ := cmd.Flags().GetInt("limit")
		cycles, _ := cmd.Flags().GetBool("cycles")
		stats, _ := cmd.Flags().GetBool("stats")
		export, _ := cmd.Flags().GetString("export")

		filter := journal.Filter{Root: rootArg, FailedOnly: failed, Limit: limit}
		if sinceArg != "" {
			since, err := journal.ParseSince(sinceArg, time.Now())
			if err != nil {
				fatalf("%v", err)
			}
			filter.Since = since
		}

		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			fatalf("open journal: %v", err)
		}
		defer db.Close()

		ctx := context.Background()

		switch {
		case export != "":
			out := os.Stdout
			if export != "-" {
				f, err := os.Create(export)
				if err != nil {
					fatalf("%v", err)
				}
				defer f.Close()
				out = f
			}
			n, err := db.ExportJSONL(ctx, out, filter)
			if err != nil {
				fatalf("%v", err)
			}
			if export != "-" {
				fmt.Printf("Exported %d records to %s\n", n, export)
			}

		case stats:
			agg, err := db.Aggregate(ctx, filter.Since)
			if err != nil {
				fatalf("%v", err)
			}
			fmt.Printf("Invocations: %d (%d failed, avg %.0fms)\n",
				agg.Invocations, agg.Failures, agg.AvgDurationMS)
			fmt.Printf("Cycles:      %d (%d paths committed)\n", agg.Cycles, agg.Committed)

		case cycles:
			records, err := db.Cycles(ctx, filter)
			if err != nil {
				fatalf("%v", err)
			}
			if len(records) == 0 {
				fmt.Println("No cycles recorded.")
				return
			}
			for _, rec := range records {
				updated := ""
				if rec.Updated {
					updated = " (updated first)"
				}
				fmt.Printf("%s  %d roots, %d candidates → %d committed, %d failed%s\n",
					rec.StartedAt.Format("2006-01-02 15:04:05"),
					rec.Roots, rec.Candidates, rec.Committed, rec.Failed, updated)
			}

		default:
			records, err := db.Processes(ctx, filter)
			if err != nil {
				fatalf("%v", err)
			}
			if len(records) == 0 {
				fmt.Println("No invocations recorded.")
				return
			}
			for _, rec := range records {
				status := fmt.Sprintf("exit %d", rec.ExitCode)
				if rec.Skipped {
					status = "skipped"
				}
				fmt.Printf("%s  %-50s %s (%dms)\n",
					rec.StartedAt.Format("2006-01-02 15:04:05"),
					rec.Label, status, rec.DurationMS)
			}
		}
	},
}

func init() {
	flags := historyCmd.Flags()
	flags.String("since", "", "only entries at or after this time")
	flags.String("root", "", "only entries for this working copy")
	flags.Bool("failed", false, "only failed invocations")
	flags.Int("limit", 20, "maximum rows (0 = all)")
	flags.Bool("cycles", false, "show commit cycles instead of invocations")
	flags.Bool("stats", false, "show aggregate numbers")
	flags.String("export", "", "write matching invocations as JSONL to this file (- for stdout)")
	flags.String("journal-path", "", "journal database location")

	rootCmd.AddCommand(historyCmd)
}
