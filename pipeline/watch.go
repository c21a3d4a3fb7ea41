package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watch runs once, then re-runs whenever a source directory changes, until
// the context is cancelled. Change events are debounced so one save triggers
// one run; a failed run is logged and watching continues.
func (r *Runner) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range r.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			r.logger.Warn("cannot watch directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		r.logger.Info("watching", slog.String("dir", dir))
	}

	if _, err := r.Run(ctx); err != nil {
		r.logger.Error("run failed", slog.String("error", err.Error()))
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Debug("source changed", slog.String("path", ev.Name))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			if _, err := r.Run(ctx); err != nil {
				r.logger.Error("run failed", slog.String("error", err.Error()))
			}
		}
	}
}

// watchDirs derives the static directory prefixes of the source patterns,
// deduplicated and sorted.
func (r *Runner) watchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, src := range r.cfg.Sources {
		pattern := src.Pattern
		if r.cfg.BaseDir != "" && !filepath.IsAbs(pattern) {
			pattern = filepath.Join(r.cfg.BaseDir, pattern)
		}
		base, _ := doublestar.SplitPattern(pattern)
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}
		dirs = append(dirs, base)
	}
	sort.Strings(dirs)
	return dirs
}
