package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
)

const debounceDelay = 50 * time.Millisecond

// Watcher reports modifications of the cache file made by other processes.
// Changes written through the watched Cache itself are ignored.
type Watcher struct {
	cache    *Cache
	watcher  *fsnotify.Watcher
	onChange func(ctx context.Context)
	log      zerolog.Logger

	mu       sync.Mutex
	debounce *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching the directory holding cache. onChange runs on a
// timer goroutine after a burst of events has settled.
func NewWatcher(cache *Cache, onChange func(ctx context.Context)) (*Watcher, error) {
	dir := filepath.Dir(cache.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// The directory is watched because atomic renames replace the file inode.
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cache:    cache,
		watcher:  fw,
		onChange: onChange,
		log:      logging.Component("cache-watcher"),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
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
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(event.Name) != filepath.Base(w.cache.Path()) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.fire)
}

func (w *Watcher) fire() {
	if w.ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(w.cache.Path())
	if err != nil {
		return
	}
	if w.cache.ownWrite(data) {
		return
	}

	w.log.Info().Str("path", w.cache.Path()).Msg("task cache modified externally")
	w.onChange(w.ctx)
}
