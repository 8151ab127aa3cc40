package folio

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const debounce = 500 * time.Millisecond

// Watch calls rebuild whenever something below root changes and then stays
// quiet for the debounce interval. Calls to rebuild never overlap. Watch
// returns when ctx is done, after a running rebuild has finished.
func Watch(ctx context.Context, root string, rebuild func() error, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "Failed to create file watcher")
	}
	defer watcher.Close()

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "Cannot watch %q", root)
	}

	// Rebuilds run one at a time on their own goroutine. A change during a
	// rebuild queues at most one more.
	trigger := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range trigger {
			if ctx.Err() != nil {
				return
			}
			if err := rebuild(); err != nil {
				log.Error("rebuild failed", zap.Error(err))
				continue
			}
			log.Info("rebuilt")
		}
	}()
	defer func() {
		close(trigger)
		wg.Wait()
	}()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := watcher.Add(ev.Name); err != nil {
					log.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
				}
			}

			pending = time.After(debounce)
		case <-pending:
			pending = nil
			select {
			case trigger <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
