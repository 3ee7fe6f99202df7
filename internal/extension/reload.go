package extension

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher polls both extension roots for changes and reloads the registry,
// using fsnotify as a fast-path signal and a ticker as the mtime-poll
// fallback for filesystems where fsnotify events are unreliable (network
// mounts, some container overlays).
type Watcher struct {
	reg          *Registry
	pollInterval time.Duration
}

func NewWatcher(reg *Registry, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Watcher{reg: reg, pollInterval: pollInterval}
}

// Run blocks until ctx is done, reloading the registry whenever a watched
// directory's contents change.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("extension watcher: fsnotify unavailable, falling back to mtime poll only", "err", err)
		return w.pollOnly(ctx)
	}
	defer fsw.Close()

	for _, root := range []string{w.reg.globalRoot, w.reg.projectRoot} {
		if root == "" {
			continue
		}
		if err := fsw.Add(root); err != nil {
			slog.Debug("extension watcher: could not watch root", "root", root, "err", err)
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				continue
			}
			slog.Debug("extension watcher: fsnotify event", "path", ev.Name, "op", ev.Op.String())
			w.reloadIfChanged()
		case err, ok := <-fsw.Errors:
			if !ok {
				continue
			}
			slog.Warn("extension watcher: fsnotify error", "err", err)
		case <-ticker.C:
			w.reloadIfChanged()
		}
	}
}

func (w *Watcher) pollOnly(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.reloadIfChanged()
		}
	}
}

func (w *Watcher) reloadIfChanged() {
	if !w.reg.Changed() {
		return
	}
	if err := w.reg.ReloadAll(); err != nil {
		slog.Warn("extension watcher: reload failed", "err", err)
	} else {
		slog.Info("extension watcher: reloaded packages")
	}
}
