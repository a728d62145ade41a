package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"landed-cost/internal/errors"
	"landed-cost/internal/logging"
)

// DebounceInterval is how long Watch waits for writes to settle
var DebounceInterval = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes every valid result to
// onChange. Invalid or removed files are logged and skipped. Watch blocks
// until ctx is done.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save are still observed.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Config("create config watcher", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Config("resolve "+path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Config("watch "+filepath.Dir(abs), err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			logging.Warn("config file removed, keeping current config", zap.String("path", abs))
			return
		}
		cfg, err := Load(abs)
		if err != nil {
			logging.Warn("config reload failed", zap.String("path", abs), zap.Error(err))
			return
		}
		logging.Info("config reloaded", zap.String("path", abs))
		onChange(cfg)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(DebounceInterval, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config watcher error", zap.Error(err))
		}
	}
}
