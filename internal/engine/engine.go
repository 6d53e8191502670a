// Package engine drives change detection. An Engine owns the baseline
// snapshot, the working copy set, the today ledger, and the debounce
// state, and advances in discrete steps: the host calls Tick with the
// current instant, so tests drive it with synthetic timestamps while
// Run feeds it the wall clock on a periodic ticker.
//
// Polling is the source of truth. The fsnotify watcher only wakes the
// loop early after a filesystem event; losing it degrades to plain
// polling, never to missed changes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariavision/svnwatch/internal/ledger"
	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/orchestrator"
	"github.com/ariavision/svnwatch/internal/snapshot"
	"github.com/ariavision/svnwatch/internal/wc"
)

// ErrNoRoot is returned when the engine is built without a watched
// root directory.
var ErrNoRoot = errors.New("no watched root configured")

// Committer runs a commit cycle over the ledger. The orchestrator
// satisfies it; tests substitute a recorder.
type Committer interface {
	CommitToday(ctx context.Context, now time.Time, led *ledger.Ledger) orchestrator.Summary
}

// Events receives engine notifications for the dashboard. Nil disables.
type Events interface {
	ChangesDetected(added, removed, modified int)
	DayRollover(dayStart time.Time)
	RootsRefreshed(roots []string)
}

// Config wires an Engine.
type Config struct {
	// Root is the watched directory tree.
	Root string

	// ScanInterval is the polling period for Run.
	ScanInterval time.Duration

	// Debounce is the quiet window after the last detected change
	// before a commit cycle fires. It re-arms on every new change.
	Debounce time.Duration

	Logger    logging.Logger
	Committer Committer
	Events    Events
}

// DefaultScanInterval and DefaultDebounce match the persisted
// configuration defaults.
const (
	DefaultScanInterval = 2 * time.Second
	DefaultDebounce     = 5 * time.Second
)

// Engine is the change-detection state machine. Not safe for
// concurrent use: Run serializes all ticks, and the orchestrator is
// invoked synchronously from the tick path, never re-entrantly.
type Engine struct {
	cfg      Config
	log      logging.Logger
	led      *ledger.Ledger
	roots    *wc.Set
	baseline snapshot.Snapshot

	pending    bool
	lastChange time.Time
}

// New builds an Engine tracking the day containing now. The watched
// root must exist; working copies are discovered and the initial
// baseline snapshot is taken, so pre-existing files are not treated
// as new additions.
func New(cfg Config, now time.Time) (*Engine, error) {
	if cfg.Root == "" {
		return nil, ErrNoRoot
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watched root: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("watched root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watched root %s: %w", abs, wc.ErrNotDirectory)
	}
	cfg.Root = abs

	if cfg.Logger == nil {
		cfg.Logger = logging.Nop{}
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	e := &Engine{
		cfg: cfg,
		log: cfg.Logger,
		led: ledger.New(now),
	}
	if err := e.RefreshRoots(); err != nil {
		return nil, err
	}
	e.Rebaseline()
	return e, nil
}

// Ledger exposes the engine's ledger for one-shot commands and tests.
func (e *Engine) Ledger() *ledger.Ledger { return e.led }

// Roots returns the currently known working copy roots.
func (e *Engine) Roots() []string { return e.roots.Roots() }

// RefreshRoots rediscovers working copies under the watched root and
// resets the ledger's ownership map. All pending entries are dropped,
// matching the "locator refresh wipes state" lifecycle.
func (e *Engine) RefreshRoots() error {
	roots, err := wc.FindRoots(e.cfg.Root)
	if err != nil {
		return err
	}
	e.roots = wc.NewSet(roots)
	e.led.SetRoots(e.roots)
	e.log.Info("discovered %d working copies under %s", e.roots.Len(), e.cfg.Root)
	if e.cfg.Events != nil {
		e.cfg.Events.RootsRefreshed(e.roots.Roots())
	}
	return nil
}

// Rebaseline re-scans the watched root and adopts the result as the
// baseline without recording anything. Called at startup and after a
// pre-commit update, so files the update touched are not re-ledgered.
func (e *Engine) Rebaseline() {
	snap, skips := snapshot.Scan(e.cfg.Root)
	e.baseline = snap
	if len(skips) > 0 {
		e.log.Info("baseline scan skipped %d entries", len(skips))
	}
}

// Tick advances the engine one step:
//
//  1. roll the ledger over if the tracked day has ended
//  2. scan and diff against the baseline
//  3. record changes and (re-)arm the debounce timer
//  4. when the quiet window has elapsed, run a commit cycle
//     synchronously
//
// Nothing on this path panics or returns an error; failures degrade
// to log-and-continue so the loop always reaches the next tick.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	if e.led.RolloverDue(now) {
		e.led.Reset(now)
		e.log.Info("day rolled over; ledger cleared, now tracking %s",
			e.led.DayStart().Format("2006-01-02"))
		if e.cfg.Events != nil {
			e.cfg.Events.DayRollover(e.led.DayStart())
		}
	}

	snap, _ := snapshot.Scan(e.cfg.Root)
	changes := snapshot.Diff(e.baseline, snap)
	if !changes.Empty() {
		e.baseline = snap
		recorded := 0
		for _, path := range changes.Added {
			if e.led.Record(ledger.Added, path, snap[path].ModTime) {
				recorded++
			}
		}
		for _, path := range changes.Modified {
			if e.led.Record(ledger.Modified, path, snap[path].ModTime) {
				recorded++
			}
		}
		for _, path := range changes.Removed {
			// A deleted file has no retrievable mtime; it is "today's"
			// because it was detected today.
			if e.led.Record(ledger.Deleted, path, now) {
				recorded++
			}
		}

		// Debounce arms on raw diff activity even when nothing
		// survived the ledger guard; a burst of ignored churn still
		// delays the next commit attempt.
		e.pending = true
		e.lastChange = now

		e.log.Info("detected %d changes (+%d ~%d -%d), %d ledgered, %d pending",
			changes.Total(), len(changes.Added), len(changes.Modified),
			len(changes.Removed), recorded, e.led.Len())
		if e.cfg.Events != nil {
			e.cfg.Events.ChangesDetected(len(changes.Added), len(changes.Removed), len(changes.Modified))
		}
	}

	if e.pending && now.Sub(e.lastChange) >= e.cfg.Debounce {
		e.pending = false
		if e.cfg.Committer != nil {
			e.cfg.Committer.CommitToday(ctx, now, e.led)
		}
	}
}

// Run drives Tick on the scan interval until ctx is cancelled. A
// filesystem event from the hint watcher triggers an early tick.
// Cancellation stops scheduling; an in-flight external invocation
// inside a tick finishes or times out on its own.
func (e *Engine) Run(ctx context.Context) error {
	var wake <-chan struct{}
	watcher, err := newHintWatcher(e.log)
	if err != nil {
		// Nil wake channel blocks forever; polling carries on alone.
		e.log.Warning("filesystem hint watcher unavailable, polling only: %v", err)
	} else {
		watcher.Watch(e.cfg.Root)
		watcher.Watch(e.roots.Roots()...)
		wake = watcher.Wake()
		defer watcher.Close()
	}

	e.log.Info("watching %s (scan %v, debounce %v)", e.cfg.Root, e.cfg.ScanInterval, e.cfg.Debounce)
	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("monitoring stopped")
			return nil
		case <-ticker.C:
			e.Tick(ctx, time.Now())
		case <-wake:
			e.Tick(ctx, time.Now())
		}
	}
}
