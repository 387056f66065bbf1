package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/streamguardhq/streamguard"
)

// Watcher reloads a RuleSetConfig from disk whenever the backing file
// changes, rebuilding a fresh Engine on each reload.
//
// Thread Safety: Engine() is safe for concurrent use; the returned
// *streamguard.Engine itself is not (same contract as streamguard.Engine).
type Watcher struct {
	mu     sync.RWMutex
	path   string
	engine *streamguard.Engine
	logger *slog.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher loads path once, builds its initial Engine, and starts
// watching the file for writes. Call Close when done.
//
// Description:
//
//	On every fsnotify Write or Create event for path, the file is
//	re-read, re-validated, and rebuilt into a new Engine. A reload that
//	fails to parse or validate is logged and the previous Engine is kept
//	in place — a bad edit never leaves the watcher without a usable
//	Engine.
func NewWatcher(ctx context.Context, path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("NewWatcher: reading %s: %w", path, err)
	}
	cfg, err := LoadRuleSetConfig(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("NewWatcher: %w", err)
	}
	engine, err := BuildEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("NewWatcher: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("NewWatcher: starting fsnotify: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("NewWatcher: watching %s: %w", path, err)
	}

	w := &Watcher{
		path:    path,
		engine:  engine,
		logger:  logger,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Engine returns the currently active Engine. Safe to call concurrently
// with reloads; the returned pointer reflects the latest successfully
// loaded config at the time of the call.
func (w *Watcher) Engine() *streamguard.Engine {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.engine
}

// Close stops the underlying fsnotify watcher and its event loop.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("config reload: read failed, keeping previous engine",
			slog.String("path", w.path), slog.Any("error", err))
		return
	}
	cfg, err := LoadRuleSetConfig(ctx, data)
	if err != nil {
		w.logger.Warn("config reload: validation failed, keeping previous engine",
			slog.String("path", w.path), slog.Any("error", err))
		return
	}
	engine, err := BuildEngine(cfg)
	if err != nil {
		w.logger.Warn("config reload: build failed, keeping previous engine",
			slog.String("path", w.path), slog.Any("error", err))
		return
	}

	w.mu.Lock()
	w.engine = engine
	w.mu.Unlock()

	w.logger.Info("config reloaded", slog.String("path", w.path), slog.String("name", cfg.Name))
}
