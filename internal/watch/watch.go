// Package watch drives an fsnotify-based incremental rebuild loop: it
// watches the repository tree and re-runs engine.Build, debounced, after
// a burst of filesystem changes settles (SPEC_FULL.md §6, `relgraph
// watch`).
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"relgraph/internal/config"
	"relgraph/internal/engine"
	"relgraph/internal/rlog"
)

// debounce is how long the watcher waits after the last observed event
// before triggering a rebuild, coalescing a burst of saves (editors
// routinely emit several write events per save) into one Build call.
const debounce = 300 * time.Millisecond

var skipDirNames = map[string]struct{}{
	".git": {}, "node_modules": {}, "__pycache__": {}, ".venv": {}, "venv": {},
	"dist": {}, "build": {}, ".mypy_cache": {}, ".pytest_cache": {},
}

// Watcher rebuilds cfg's graph on filesystem changes under cfg.RepoPath.
type Watcher struct {
	cfg config.Config
	log *rlog.Logger
	fsw *fsnotify.Watcher
}

// New creates a Watcher rooted at cfg.RepoPath. Call Run to start it.
func New(cfg config.Config, log *rlog.Logger) (*Watcher, error) {
	if log == nil {
		log = rlog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{cfg: cfg, log: log, fsw: fsw}
	if err := w.addTree(cfg.RepoPath); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || isSkipDir(name)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func isSkipDir(name string) bool {
	_, ok := skipDirNames[name]
	return ok
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run blocks, rebuilding and invoking onBuild after each settled burst of
// filesystem events, until ctx is cancelled. The first build runs
// immediately, before any filesystem event is observed.
func (w *Watcher) Run(ctx context.Context, onBuild func(*engine.Result, error)) error {
	build := func() {
		res, err := engine.Build(ctx, w.cfg, w.log)
		onBuild(res, err)
	}
	build()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				_ = w.fsw.Add(ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			build()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", rlog.F("error", err.Error()))
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
