// Package orchestrator turns today's ledger entries into commits. For
// every working copy with pending entries it re-validates each entry
// against the live filesystem, stages additions and removals, then
// commits the surviving paths in bounded batches, pruning exactly the
// paths of each successful batch from the ledger. Failed batches stay
// pending and are retried on the next debounce cycle.
package orchestrator

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/ariavision/svnwatch/internal/journal"
	"github.com/ariavision/svnwatch/internal/ledger"
	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/vcs"
	"github.com/ariavision/svnwatch/internal/wc"
)

// Recorder receives journal rows. *journal.DB satisfies it; tests use
// an in-memory fake; nil disables journaling.
type Recorder interface {
	RecordProcess(ctx context.Context, rec journal.ProcessRecord) error
	RecordCycle(ctx context.Context, rec journal.CycleRecord) error
}

// Reporter receives cycle events for the dashboard. Nil disables it.
type Reporter interface {
	CycleStarted(roots, candidates int)
	ChunkResult(root string, paths, exitCode int)
	CycleFinished(committed, failed int)
	UpdateRun(roots int)
}

// Config wires an Orchestrator.
type Config struct {
	Backend vcs.Backend
	Logger  logging.Logger
	Journal Recorder
	Report  Reporter

	// CommitPrefix for composed messages; DefaultPrefix when empty.
	CommitPrefix string

	// StageBatch bounds add/rm invocations. Defaults to
	// vcs.DefaultStageBatch.
	StageBatch int

	// CommitBatch bounds commit invocations. Zero defers to the
	// backend's preference.
	CommitBatch int

	// AutoUpdate runs UpdateAll before staging, best-effort.
	AutoUpdate bool

	// Rebaseline is called after a pre-commit update so the engine
	// adopts the updated tree as its baseline instead of re-ledgering
	// files the update touched. Optional.
	Rebaseline func()
}

// Orchestrator executes commit cycles. It is driven synchronously from
// the engine's tick path and keeps no state beyond the one-shot
// backend warning.
type Orchestrator struct {
	cfg             Config
	log             logging.Logger
	warnedNoBackend bool
}

// New builds an Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop{}
	}
	if cfg.StageBatch <= 0 {
		cfg.StageBatch = vcs.DefaultStageBatch
	}
	return &Orchestrator{cfg: cfg, log: cfg.Logger}
}

// Summary reports what one cycle did.
type Summary struct {
	Roots      int // working copies visited
	Candidates int // entries surviving re-validation
	Committed  int // paths pruned after successful batches
	Failed     int // paths left pending after failed batches
	Updated    bool
}

// CommitToday runs one commit cycle over led. Never returns an error:
// every failure mode is logged, journaled, and left in the ledger for
// the next cycle.
func (o *Orchestrator) CommitToday(ctx context.Context, now time.Time, led *ledger.Ledger) Summary {
	var sum Summary
	start := now

	roots := led.WorkingCopies()
	if len(roots) == 0 {
		o.log.Info("no items changed today; nothing to commit")
		return sum
	}

	backend := o.cfg.Backend
	if backend == nil || !backend.Available() {
		if !o.warnedNoBackend {
			o.log.Warning("no svn backend available; %d pending entries held for retry", led.Len())
			o.warnedNoBackend = true
		}
		return sum
	}
	o.warnedNoBackend = false

	if o.cfg.AutoUpdate {
		sum.Updated = o.UpdateAll(ctx, led.Roots())
		if o.cfg.Rebaseline != nil {
			o.cfg.Rebaseline()
		}
	}

	message := ComposeMessage(o.cfg.CommitPrefix, now, "")

	type plan struct {
		root  string
		view  map[string]ledger.Kind
		batch int
		msg   string
	}
	var plans []plan

	for _, root := range roots {
		ov, found, err := LoadOverride(root)
		if err != nil {
			o.log.Warning("override %s ignored: %v", root, err)
			ov = Override{}
		}
		if found && ov.Disabled {
			o.log.Info("working copy disabled by override, skipping: %s", root)
			continue
		}

		view := revalidate(root, led.Entries(root), led.DayStart(), ov)
		if len(view) == 0 {
			continue
		}

		p := plan{root: root, view: view, batch: o.commitBatchFor(ov, backend), msg: message}
		if ov.CommitPrefix != "" {
			p.msg = ComposeMessage(ov.CommitPrefix, now, "")
		}
		plans = append(plans, p)
		sum.Roots++
		sum.Candidates += len(view)
	}

	if o.cfg.Report != nil {
		o.cfg.Report.CycleStarted(sum.Roots, sum.Candidates)
	}

	for _, p := range plans {
		o.stage(ctx, backend, p.root, p.view)

		paths := sortedPaths(p.view)
		for _, batch := range vcs.Chunk(paths, p.batch) {
			oc := backend.Commit(ctx, p.root, batch, p.msg)
			o.observe(ctx, p.root, oc)
			if o.cfg.Report != nil {
				o.cfg.Report.ChunkResult(p.root, len(batch), oc.ExitCode)
			}
			if oc.OK() {
				for _, path := range batch {
					led.Remove(p.root, path)
				}
				sum.Committed += len(batch)
				o.log.Success("committed %d paths in %s", len(batch), p.root)
			} else {
				sum.Failed += len(batch)
				o.log.Warning("commit batch failed (exit %d), %d paths retained: %s",
					oc.ExitCode, len(batch), p.root)
			}
		}
	}

	if o.cfg.Journal != nil {
		if err := o.cfg.Journal.RecordCycle(ctx, journal.CycleRecord{
			StartedAt:  start,
			Roots:      sum.Roots,
			Candidates: sum.Candidates,
			Committed:  sum.Committed,
			Failed:     sum.Failed,
			Updated:    sum.Updated,
		}); err != nil {
			o.log.Warning("journal cycle: %v", err)
		}
	}
	if o.cfg.Report != nil {
		o.cfg.Report.CycleFinished(sum.Committed, sum.Failed)
	}
	return sum
}

// UpdateAll brings every root up to date. Best-effort: failures are
// logged and the commit attempt proceeds regardless. Returns true when
// at least one update invocation ran.
func (o *Orchestrator) UpdateAll(ctx context.Context, roots []string) bool {
	backend := o.cfg.Backend
	if backend == nil || !backend.Available() || len(roots) == 0 {
		return false
	}
	ran := false
	for _, oc := range backend.Update(ctx, roots) {
		o.observe(ctx, "", oc)
		if !oc.Skipped {
			ran = true
		}
		if oc.Failed() {
			o.log.Warning("update failed (exit %d): %s", oc.ExitCode, oc.Label)
		}
	}
	if o.cfg.Report != nil && ran {
		o.cfg.Report.UpdateRun(len(roots))
	}
	return ran
}

// revalidate builds the commit view for one working copy. The ledger
// itself is never touched here:
//
//   - Added/Modified whose file is gone → Deleted in the view
//   - still present but mtime now before day start → dropped (the
//     entry stays; midnight reset clears it)
//   - no longer under the root, or matching an override suffix → dropped
//   - Deleted passes through
func revalidate(root string, entries map[string]ledger.Kind, dayStart time.Time, ov Override) map[string]ledger.Kind {
	view := make(map[string]ledger.Kind, len(entries))
	for path, kind := range entries {
		if !wc.IsSubPath(root, path) {
			continue
		}
		if ov.ignores(path) {
			continue
		}
		if kind == ledger.Deleted {
			view[path] = ledger.Deleted
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			view[path] = ledger.Deleted
			continue
		}
		if info.ModTime().Before(dayStart) {
			continue
		}
		view[path] = kind
	}
	return view
}

// stage registers additions and removals with version control, batched
// by the stage batch size. Staging failures are logged but never abort
// the cycle; the commit attempt decides what actually sticks.
func (o *Orchestrator) stage(ctx context.Context, backend vcs.Backend, root string, view map[string]ledger.Kind) {
	var adds, dels []string
	for path, kind := range view {
		switch kind {
		case ledger.Added:
			adds = append(adds, path)
		case ledger.Deleted:
			dels = append(dels, path)
		}
	}
	sort.Strings(adds)
	sort.Strings(dels)

	for _, batch := range vcs.Chunk(adds, o.cfg.StageBatch) {
		oc := backend.Add(ctx, root, batch)
		o.observe(ctx, root, oc)
		if oc.Failed() {
			o.log.Warning("stage add failed (exit %d): %s", oc.ExitCode, oc.Label)
		}
	}
	for _, batch := range vcs.Chunk(dels, o.cfg.StageBatch) {
		oc := backend.Remove(ctx, root, batch)
		o.observe(ctx, root, oc)
		if oc.Failed() {
			o.log.Warning("stage rm failed (exit %d): %s", oc.ExitCode, oc.Label)
		}
	}
}

// observe fans one invocation outcome to the log and the journal.
func (o *Orchestrator) observe(ctx context.Context, root string, oc vcs.Outcome) {
	if !oc.Skipped {
		o.log.Process(oc.Label, oc.ExitCode, oc.Duration.Milliseconds(), oc.Stdout, oc.Stderr)
	}
	if o.cfg.Journal == nil {
		return
	}
	if err := o.cfg.Journal.RecordProcess(ctx, journal.ProcessRecord{
		StartedAt:  time.Now(),
		Label:      oc.Label,
		Root:       root,
		ExitCode:   oc.ExitCode,
		DurationMS: oc.Duration.Milliseconds(),
		Stdout:     oc.Stdout,
		Stderr:     oc.Stderr,
		Skipped:    oc.Skipped,
	}); err != nil {
		o.log.Warning("journal process: %v", err)
	}
}

func (o *Orchestrator) commitBatchFor(ov Override, backend vcs.Backend) int {
	if ov.CommitBatch > 0 {
		return ov.CommitBatch
	}
	if o.cfg.CommitBatch > 0 {
		return o.cfg.CommitBatch
	}
	return backend.CommitBatch()
}

func sortedPaths(view map[string]ledger.Kind) []string {
	paths := make([]string, 0, len(view))
	for path := range view {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
