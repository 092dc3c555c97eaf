package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/folio/pkg/core"
)

const watchDebounce = 50 * time.Millisecond

// Watch emits an event for every content file matching pattern that is
// created, modified or removed. Bursts of writes to the same file collapse
// into a single event. The channel closes when ctx is cancelled.
//
// While git holds .git/index.lock (checkout, rebase) events are paused; once
// the lock is released the tree is rescanned and the net changes emitted.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.recursiveAdd(watcher, r.Path); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	_ = watcher.Add(filepath.Join(r.Path, ".git"))

	events := make(chan core.Event, 64)
	w := &watchWorker{
		repo:      r,
		pattern:   pattern,
		events:    events,
		watcher:   watcher,
		debouncer: newDebouncer(watchDebounce),
		done:      make(chan struct{}),
	}
	w.snapshot = r.snapshot(context.Background())
	r.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.reportWatchError(fmt.Errorf("watcher stopped: %w", err))
	}))
	return events, nil
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

type watchWorker struct {
	repo      *Repository
	pattern   string
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer

	// done is closed when run exits so that pending emits stop sending
	// before events is closed.
	done chan struct{}

	// snapshot is the tree state used to reconcile after a git lock.
	snapshot map[string]fileStamp
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.repo.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
		close(w.done)
		w.debouncer.stopAndWait()
		close(w.events)
	}()
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	var gitLocked bool
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			if locked, handled := gitLockTransition(event); handled {
				if gitLocked && !locked {
					logger.Debug("git operation finished, reconciling")
					w.reconcile(ctx)
				} else if locked {
					logger.Debug("git operation detected, pausing watcher")
				}
				gitLocked = locked
				continue
			}
			if gitLocked {
				continue
			}
			w.handle(ctx, event)

		case werr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.reportWatchError(werr)
		}
	}
}

// gitLockTransition reports whether event concerns .git/index.lock and, if
// so, whether the lock is now held.
func gitLockTransition(event fsnotify.Event) (locked bool, handled bool) {
	if filepath.Base(event.Name) != "index.lock" || filepath.Base(filepath.Dir(event.Name)) != ".git" {
		return false, false
	}
	switch {
	case event.Has(fsnotify.Create):
		return true, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return false, true
	}
	return false, false
}

func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	relPath, err := filepath.Rel(w.repo.Path, event.Name)
	if err != nil {
		return
	}
	relPath = filepath.ToSlash(relPath)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.repo.skipDir(info.Name()) && !w.repo.ignored(relPath) {
				if err := w.repo.recursiveAdd(w.watcher, event.Name); err != nil {
					w.repo.reportWatchError(err)
				}
			}
			return
		}
	}

	if !w.relevant(relPath) {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return
	}

	w.repo.cache.Delete(relPath)
	w.trackStamp(relPath, eType)
	w.repo.config.Logger.Debug("content changed", "type", eType, "path", relPath)
	w.send(ctx, core.Event{Type: eType, ID: w.repo.idFor(relPath), Timestamp: time.Now().Unix()})
}

func (w *watchWorker) relevant(relPath string) bool {
	if !w.repo.isContentFile(filepath.Base(relPath)) || w.repo.ignored(relPath) {
		return false
	}
	for dir := filepath.Dir(filepath.FromSlash(relPath)); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if w.repo.skipDir(filepath.Base(dir)) {
			return false
		}
	}
	ok, _ := doublestar.Match(w.pattern, relPath)
	return ok
}

func (w *watchWorker) trackStamp(relPath string, eType core.EventType) {
	if eType == core.EventDelete {
		delete(w.snapshot, relPath)
		return
	}
	if info, err := os.Stat(filepath.Join(w.repo.Path, filepath.FromSlash(relPath))); err == nil {
		w.snapshot[relPath] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
}

// reconcile diffs the tree against the last snapshot and emits the net changes.
func (w *watchWorker) reconcile(ctx context.Context) {
	current := w.repo.snapshot(ctx)
	now := time.Now().Unix()

	for relPath, stamp := range current {
		if !w.relevant(relPath) {
			continue
		}
		prev, existed := w.snapshot[relPath]
		switch {
		case !existed:
			w.send(ctx, core.Event{Type: core.EventCreate, ID: w.repo.idFor(relPath), Timestamp: now})
		case !prev.modTime.Equal(stamp.modTime) || prev.size != stamp.size:
			w.repo.cache.Delete(relPath)
			w.send(ctx, core.Event{Type: core.EventModify, ID: w.repo.idFor(relPath), Timestamp: now})
		}
	}
	for relPath := range w.snapshot {
		if _, ok := current[relPath]; !ok && w.relevant(relPath) {
			w.repo.cache.Delete(relPath)
			w.send(ctx, core.Event{Type: core.EventDelete, ID: w.repo.idFor(relPath), Timestamp: now})
		}
	}
	w.snapshot = current
}

func (w *watchWorker) send(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		case <-w.done:
		}
	})
}

func (r *Repository) snapshot(ctx context.Context) map[string]fileStamp {
	stamps := make(map[string]fileStamp)
	err := r.walk(ctx, func(relPath string, info iofs.FileInfo) {
		stamps[relPath] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	})
	if err != nil {
		r.config.Logger.Debug("snapshot incomplete", "error", err)
	}
	return stamps
}

// recursiveAdd registers root and every content directory beneath it.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if fullPath != r.Path {
			rel, _ := filepath.Rel(r.Path, fullPath)
			if r.skipDir(d.Name()) || r.ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(fullPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", fullPath, err)
		}
		return nil
	})
}

func (r *Repository) reportWatchError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("watch error", "error", err)
}

// debouncer delays events per document ID, keeping only the latest one.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]pendingEvent
	seq     uint64
	stopped bool
	wg      sync.WaitGroup
}

type pendingEvent struct {
	event core.Event
	seq   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]pendingEvent),
	}
}

func (d *debouncer) add(event core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	// A file written right after being created is still new.
	if prev, ok := d.pending[event.ID]; ok && prev.event.Type == core.EventCreate && event.Type == core.EventModify {
		event.Type = core.EventCreate
	}

	d.seq++
	seq := d.seq
	d.pending[event.ID] = pendingEvent{event: event, seq: seq}

	d.wg.Add(1)
	time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		p, ok := d.pending[event.ID]
		if !ok || p.seq != seq || d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.pending, event.ID)
		d.mu.Unlock()

		emit(p.event)
	})
}

// stopAndWait drops pending events and waits for in-flight emits to return.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	d.pending = make(map[string]pendingEvent)
	d.mu.Unlock()

	d.wg.Wait()
}
