// Package watch turns a local inbox directory into an event source: every
// file written to <root>/<bucket>/ is handed to a handler.Processor as if it
// had been uploaded to that bucket.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tsawler/reviewsense/internal/handler"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 300 * time.Millisecond

// MinDebounce is the shortest quiet period SetDebounce accepts.
const MinDebounce = 3 * time.Millisecond

// Stats counts watcher activity.
type Stats struct {
	Processed int
	Failed    int
	Errors    int
}

// Watcher watches the bucket directories under a root.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	root        string
	processor   *handler.Processor
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a Watcher for root. A nil logger discards everything.
func New(root string, processor *handler.Processor, logger *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:     watcher,
		root:        root,
		processor:   processor,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. It must be called before Start.
// Periods shorter than MinDebounce are raised to it.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounceDur = max(d, MinDebounce)
}

// Start watches the root and every existing source bucket directory. It
// returns once the watches are in place; events are handled in the
// background until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.root, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.root); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addBucket(filepath.Join(w.root, entry.Name()))
		}
	}

	w.running = true
	w.logger.Info("watching inbox", zap.String("root", w.root))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			w.logger.Error("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	dir, name := filepath.Split(event.Name)
	dir = filepath.Clean(dir)

	if dir == filepath.Clean(w.root) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addBucket(event.Name)
		}
		return
	}
	if filepath.Dir(dir) != filepath.Clean(w.root) || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return
	}

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// addBucket watches a bucket directory unless it holds verdicts.
func (w *Watcher) addBucket(path string) {
	suffix := w.processor.Options().DestinationSuffix
	if suffix != "" && strings.HasSuffix(filepath.Base(path), suffix) {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("cannot watch bucket", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Debug("watching bucket", zap.String("bucket", filepath.Base(path)))
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		bucket := filepath.Base(filepath.Dir(path))
		key := filepath.Base(path)

		_, err := w.processor.Handle(ctx, bucket, key)

		w.mu.Lock()
		if err != nil {
			w.stats.Failed++
		} else {
			w.stats.Processed++
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("failed to handle review",
				zap.String("bucket", bucket),
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
