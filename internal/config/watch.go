package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written or replaced and delivers the
// reloaded settings on the returned channel. Only the latest settings are
// kept if the receiver falls behind. The channel closes once ctx is done.
func Watch(ctx context.Context, path string) (<-chan Settings, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	// Editors often save by renaming over the file, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	out := make(chan Settings, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := Load(path); err != nil {
					slog.Warn("config reload failed", "path", path, "err", err)
					continue
				}
				slog.Info("config reloaded", "path", path)
				publish(out, Get())
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "path", path, "err", err)
			}
		}
	}()
	return out, nil
}

// publish replaces any undelivered value in out with s.
func publish(out chan Settings, s Settings) {
	select {
	case out <- s:
	default:
		select {
		case <-out:
		default:
		}
		out <- s
	}
}
