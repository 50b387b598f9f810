package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"auctionpauser/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the settings file whenever it changes on disk and passes
// the result to onChange. Unparseable edits are logged and skipped. Watch
// returns once the watcher is set up; it stops when ctx is done.
func (store *Store) Watch(ctx context.Context, onChange func(preferences.Settings)) error {
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	// Editors replace the file, so watch the directory.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go store.watch(ctx, watcher, onChange)
	return nil
}

func (store *Store) watch(ctx context.Context, watcher *fsnotify.Watcher, onChange func(preferences.Settings)) {
	defer watcher.Close()

	name := filepath.Base(store.path)
	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("settings watcher: %v", err)
		case <-debounce.C:
			settings, err := store.Load()
			if err != nil {
				log.Warnf("ignoring settings change: %v", err)
				continue
			}
			log.Infof("settings reloaded from %s", store.path)
			onChange(settings)
		}
	}
}
