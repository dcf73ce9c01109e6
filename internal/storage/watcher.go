package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"timekeeper/internal/core/model"
)

const debounceInterval = 500 * time.Millisecond

// ReloadFunc receives a record that was changed outside this process.
type ReloadFunc func(record model.Record)

// Watcher reloads the YAML state file after external edits.
// The directory is watched so that replace-by-rename writes are seen.
type Watcher struct {
	gateway  *YAMLGateway
	logger   *zap.Logger
	onReload ReloadFunc

	fsWatcher *fsnotify.Watcher
	cancel    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching the gateway's file.
func NewWatcher(gateway *YAMLGateway, logger *zap.Logger, onReload ReloadFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(gateway.Path())); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch data directory: %w", err)
	}

	watcher := &Watcher{
		gateway:   gateway,
		logger:    logger,
		onReload:  onReload,
		fsWatcher: fsWatcher,
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go watcher.watchLoop()
	return watcher, nil
}

// Close stops watching.
func (watcher *Watcher) Close() {
	watcher.closeOnce.Do(func() {
		close(watcher.cancel)
		watcher.fsWatcher.Close()
		<-watcher.done
	})
}

func (watcher *Watcher) watchLoop() {
	defer close(watcher.done)
	var timer *time.Timer
	target := filepath.Clean(watcher.gateway.Path())

	for {
		select {
		case <-watcher.cancel:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, watcher.reload)

		case err, ok := <-watcher.fsWatcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Warn("state watcher error", zap.Error(err))
		}
	}
}

func (watcher *Watcher) reload() {
	select {
	case <-watcher.cancel:
		return
	default:
	}

	record, changed, err := watcher.gateway.loadExternal()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			watcher.logger.Warn("ignoring unreadable state file", zap.Error(err))
		}
		return
	}
	if !changed {
		return
	}
	watcher.logger.Info("state file changed on disk, reloading", zap.String("path", watcher.gateway.Path()))
	watcher.onReload(record)
}
