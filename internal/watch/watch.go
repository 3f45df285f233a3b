// Package watch reports batches of file system changes under a set of roots
// once they have been quiet for a while.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/openmined/docsync/internal/utils"
	"github.com/rjeczalik/notify"
)

const (
	DefaultQuietPeriod = 2 * time.Second
	eventBufferSize    = 256
)

// FilterCallback returns true if the event at path should be dropped.
type FilterCallback func(path string) bool

// Root is a watched directory.
type Root struct {
	Path      string
	Recursive bool
}

func (r Root) notifyPath() string {
	if r.Recursive {
		return filepath.Join(r.Path, "...")
	}
	return r.Path
}

// Watcher coalesces raw events into batches of changed paths. A batch is
// emitted once no event has arrived for the quiet period.
type Watcher struct {
	roots       []Root
	quietPeriod time.Duration
	rawEvents   chan notify.EventInfo
	changes     chan []string
	done        chan struct{}
	wg          sync.WaitGroup

	filterMu sync.RWMutex
	filter   FilterCallback
}

func NewWatcher(quietPeriod time.Duration, roots ...Root) *Watcher {
	if quietPeriod <= 0 {
		quietPeriod = DefaultQuietPeriod
	}
	return &Watcher{
		roots:       roots,
		quietPeriod: quietPeriod,
		done:        make(chan struct{}),
	}
}

// FilterPaths sets a callback that drops raw events before they are batched.
func (w *Watcher) FilterPaths(callback FilterCallback) {
	w.filterMu.Lock()
	defer w.filterMu.Unlock()
	w.filter = callback
}

func (w *Watcher) Start(ctx context.Context) error {
	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)
	w.changes = make(chan []string, 1)

	for _, root := range w.roots {
		slog.Info("watch start", "dir", root.Path, "recursive", root.Recursive)
		if err := notify.Watch(root.notifyPath(), w.rawEvents, notify.Create, notify.Write, notify.Remove, notify.Rename); err != nil {
			notify.Stop(w.rawEvents)
			return err
		}
	}

	w.wg.Add(1)
	go w.collect(ctx)
	return nil
}

func (w *Watcher) Stop() {
	close(w.done)
	if w.rawEvents != nil {
		notify.Stop(w.rawEvents)
	}
	w.wg.Wait()
	slog.Debug("watch stopped")
}

// Changes delivers sorted batches of changed paths. It is closed after Stop
// or when the start context ends.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

func (w *Watcher) collect(ctx context.Context) {
	defer func() {
		w.wg.Done()
		close(w.changes)
	}()

	pending := mapset.NewThreadUnsafeSet[string]()
	timer := time.NewTimer(w.quietPeriod)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.rawEvents:
			if !ok {
				return
			}
			if w.filtered(event.Path()) {
				continue
			}
			pending.Add(event.Path())
			timer.Reset(w.quietPeriod)
		case <-timer.C:
			if pending.Cardinality() == 0 {
				continue
			}
			batch := pending.ToSlice()
			sort.Strings(batch)
			pending.Clear()

			select {
			case w.changes <- batch:
				slog.Debug("watch", "changed", len(batch))
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) filtered(path string) bool {
	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	return w.filter != nil && w.filter(path)
}

// RootsFor derives the directories to watch for command line paths: walked
// directories recursively, the parent of a plain file, and the static prefix
// of a glob pattern.
func RootsFor(args []string) []Root {
	seen := mapset.NewThreadUnsafeSet[string]()
	var roots []Root

	addRoot := func(p string, recursive bool) {
		abs, err := utils.ResolvePath(p)
		if err != nil {
			return
		}
		if seen.Add(abs) {
			roots = append(roots, Root{Path: abs, Recursive: recursive})
		}
	}

	for _, arg := range args {
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		if pattern != "" && hasGlobMeta(pattern) {
			addRoot(filepath.FromSlash(base), true)
			continue
		}

		info, err := os.Stat(arg)
		switch {
		case err != nil:
			slog.Warn("watch skipping path", "path", arg, "error", err)
		case info.IsDir():
			addRoot(arg, true)
		default:
			addRoot(filepath.Dir(arg), false)
		}
	}
	return roots
}

func hasGlobMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
