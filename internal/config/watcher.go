package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// reloadDebounce coalesces the burst of filesystem events editors emit when
// saving a file into a single reload.
const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when its file changes on disk. The
// parent directory is watched rather than the file itself because most
// editors replace the file on save, which would otherwise drop the watch.
type Watcher struct {
	logger  hclog.Logger
	watcher *fsnotify.Watcher
	path    string

	onReload func(*Config)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	timerMu     sync.Mutex
	reloadTimer *time.Timer
}

// NewWatcher creates a watcher for the given config file. onReload runs after
// every successful reload with the new active config.
func NewWatcher(path string, logger hclog.Logger, onReload func(*Config)) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config watcher requires a file path")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		logger:   logger,
		watcher:  fsw,
		path:     path,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. It fails if the config file's directory does not
// exist.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("config directory not accessible: %w", err)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.wg.Add(1)
	go w.eventLoop()

	w.logger.Info("watching configuration file", "path", w.path)
	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()

	w.timerMu.Lock()
	if w.reloadTimer != nil {
		w.reloadTimer.Stop()
		w.reloadTimer = nil
	}
	w.timerMu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Rename == fsnotify.Rename {
		w.scheduleReload()
	}
}

func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.reloadTimer != nil {
		w.reloadTimer.Stop()
	}
	w.reloadTimer = time.AfterFunc(reloadDebounce, func() {
		if w.ctx.Err() != nil {
			return
		}
		if err := GetConfigManager().Reload(); err != nil {
			w.logger.Error("config reload failed, keeping previous config", "error", err)
			return
		}
		w.logger.Info("configuration reloaded", "path", w.path)
		if w.onReload != nil {
			w.onReload(Get())
		}
	})
}
