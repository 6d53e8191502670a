package engine

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ariavision/svnwatch/internal/logging"
	"github.com/ariavision/svnwatch/internal/snapshot"
)

// hintWatcher wraps fsnotify to wake the poll loop early after a
// filesystem event. It is strictly an accelerator: events are
// collapsed into a single wake signal, nothing is tracked per path,
// and any error downgrades to a logged warning while polling carries
// the load. Watches are non-recursive (the watched root plus each
// working copy root); changes deeper down are caught by the next
// scheduled scan.
type hintWatcher struct {
	fs   *fsnotify.Watcher
	wake chan struct{}
	done chan struct{}
	log  logging.Logger
	wg   sync.WaitGroup
}

func newHintWatcher(log logging.Logger) (*hintWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &hintWatcher{
		fs:   fs,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  log,
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Watch adds directories. Failures are warnings, not errors: a
// missing watch just means slower detection for that subtree.
func (w *hintWatcher) Watch(dirs ...string) {
	for _, dir := range dirs {
		if err := w.fs.Add(dir); err != nil {
			w.log.Warning("watch %s: %v", dir, err)
		}
	}
}

// Wake returns the channel that pulses after relevant events.
func (w *hintWatcher) Wake() <-chan struct{} { return w.wake }

// Close stops the watcher and waits for its goroutine.
func (w *hintWatcher) Close() {
	close(w.done)
	_ = w.fs.Close()
	w.wg.Wait()
}

func (w *hintWatcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
				// A wake is already queued; the next tick sees it.
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warning("hint watcher: %v", err)
		}
	}
}

// relevant filters out chmod noise, SVN metadata churn, and transient
// files before waking the loop.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !snapshot.IsIgnored(event.Name) && !containsMetaDir(event.Name)
}

func containsMetaDir(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "/"+snapshot.MetaDirName+"/") ||
		strings.Contains(lower, "\\"+snapshot.MetaDirName+"\\") ||
		strings.HasSuffix(lower, "/"+snapshot.MetaDirName) ||
		strings.HasSuffix(lower, "\\"+snapshot.MetaDirName)
}
