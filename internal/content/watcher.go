package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce absorbs the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a content file into a Store whenever it changes.
// It watches the parent directory so atomic-rename saves are seen.
type Watcher struct {
	path     string
	store    *Store
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	reload *time.Timer
}

// NewWatcher builds a watcher for path.
func NewWatcher(path string, store *Store, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{path: filepath.Clean(path), store: store, logger: logger, debounce: DefaultDebounce}
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.logger.Info("watching content", zap.String("path", w.path))

	defer func() {
		w.mu.Lock()
		if w.reload != nil {
			w.reload.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reload != nil {
		w.reload.Stop()
	}
	w.reload = time.AfterFunc(w.debounce, w.Reload)
}

// Reload reads the file now. A broken file keeps the previous profile.
func (w *Watcher) Reload() {
	p, err := Load(w.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		w.logger.Debug("content file missing, keeping current profile", zap.String("path", w.path))
	case err != nil:
		w.logger.Warn("content reload failed, keeping current profile", zap.String("path", w.path), zap.Error(err))
	default:
		w.store.Set(p)
		w.logger.Info("content reloaded",
			zap.String("path", w.path),
			zap.Int("projects", len(p.Projects)),
			zap.Int("publications", len(p.Publications)))
	}
}
