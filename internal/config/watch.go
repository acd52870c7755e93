package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store's file whenever it is written or created and
// passes the new settings to fn. It blocks until ctx is cancelled.
// The parent directory is watched so editors that replace the file are seen.
func Watch(ctx context.Context, store *FileStore, fn func(*Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	path, err := filepath.Abs(store.Path())
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", store.Path(), err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}
	slog.Debug("config: watching settings", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settings, err := store.Load()
			if err != nil {
				slog.Warn("config: failed to reload settings", "err", err)
				continue
			}
			slog.Info("config: settings reloaded", "path", path)
			fn(settings)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config: watcher error", "err", err)
		}
	}
}
