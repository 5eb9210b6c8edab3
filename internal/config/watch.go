package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/muurk/rokuctl/internal/logging"
)

// settleDelay coalesces the burst of events an editor or an atomic
// rename produces into one reload.
const settleDelay = 100 * time.Millisecond

// Watch calls onChange with freshly loaded settings each time the file at
// path changes. It blocks until ctx is done.
//
// The parent directory is watched rather than the file, so the watch
// survives the tmp + rename done by Save, and is created when missing so a
// file saved later is still seen. A file that fails to load is
// logged and skipped; onChange only ever sees valid settings.
func Watch(ctx context.Context, path string, onChange func(*Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Nothing has been saved yet on a fresh install
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(path)
	logging.Debug("Watching config file", zap.String("path", name))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settle = time.After(settleDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Config watcher error", zap.Error(err))

		case <-settle:
			settle = nil
			settings, err := Load(path)
			if err != nil {
				logging.Warn("Ignoring config change", zap.String("path", name), zap.Error(err))
				continue
			}
			logging.Info("Config file changed", zap.String("path", name))
			onChange(settings)
		}
	}
}
