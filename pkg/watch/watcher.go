// Package watch regenerates sitemaps when page files change or on a fixed interval.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce groups bursts of file events into one regeneration
const DefaultDebounce = 200 * time.Millisecond

// RegenerateFunc rebuilds the output. reason is "initial", "change" or "interval".
type RegenerateFunc func(ctx context.Context, reason string) error

// Status describes the most recent regeneration
type Status struct {
	Runs        int
	LastRun     time.Time
	LastReason  string
	LastSuccess bool
	LastError   string
}

// Watcher runs a RegenerateFunc once at start, then again after file changes
// under dirs and every interval (0 disables the timer)
type Watcher struct {
	dirs       []string
	interval   time.Duration
	debounce   time.Duration
	regenerate RegenerateFunc
	log        *logrus.Entry

	mu     sync.Mutex
	status Status
}

// New creates a Watcher
func New(dirs []string, interval time.Duration, regenerate RegenerateFunc, log *logrus.Entry) *Watcher {
	return &Watcher{
		dirs:       dirs,
		interval:   interval,
		debounce:   DefaultDebounce,
		regenerate: regenerate,
		log:        log,
	}
}

// SetDebounce overrides the event debounce window
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Status returns a snapshot of the last regeneration
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Run blocks until ctx is done. It fails only if the file watcher cannot be started.
func (w *Watcher) Run(ctx context.Context) error {
	var fsw *fsnotify.Watcher
	if len(w.dirs) > 0 {
		var err error
		fsw, err = fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer fsw.Close()

		for _, dir := range w.dirs {
			if err := addTree(fsw, dir); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					w.log.WithField("dir", dir).Warn("Watch directory not found, skipping")
					continue
				}
				return err
			}
		}
	}

	w.runLoop(ctx, fsw)
	return nil
}

func (w *Watcher) runLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fsw != nil {
		events, errs = fsw.Events, fsw.Errors
	}

	w.log.WithFields(logrus.Fields{
		"dirs":     w.dirs,
		"interval": FormatInterval(w.interval),
	}).Info("Watching for changes")

	w.run(ctx, "initial")

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watch stopped")
			return

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, ev.Name); err != nil {
						w.log.WithField("dir", ev.Name).Warnf("Cannot watch new directory: %v", err)
					}
				}
			}
			w.log.WithField("file", ev.Name).Debug("Change detected")
			debounce.Reset(w.debounce)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.Warnf("Watcher error: %v", err)

		case <-debounce.C:
			w.run(ctx, "change")

		case <-tick:
			w.run(ctx, "interval")
		}
	}
}

func (w *Watcher) run(ctx context.Context, reason string) {
	start := time.Now()
	err := w.regenerate(ctx, reason)

	w.mu.Lock()
	w.status.Runs++
	w.status.LastRun = start
	w.status.LastReason = reason
	w.status.LastSuccess = err == nil
	w.status.LastError = ""
	if err != nil {
		w.status.LastError = err.Error()
	}
	w.mu.Unlock()

	entry := w.log.WithFields(logrus.Fields{"reason": reason, "duration": time.Since(start).Round(time.Millisecond)})
	if err != nil {
		entry.Errorf("Regeneration failed: %v", err)
		return
	}
	entry.Info("Regenerated")
}

// addTree watches dir and every directory below it
func addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
