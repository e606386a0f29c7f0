package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops a module's cached state. Satisfied by the loader.
type Invalidator interface {
	Invalidate(path string)
}

// Config contains configuration for the module watcher.
type Config struct {
	// Root is the directory to watch, the same root module paths resolve
	// against.
	Root string

	// DebounceInterval is the quiet period before invalidation fires
	// (default: 500ms).
	DebounceInterval time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:             root,
		DebounceInterval: 500 * time.Millisecond,
	}
}

// Watcher observes the source root and invalidates modules whose `.dsl`
// source or `.contract.json` contract changes.
type Watcher struct {
	watcher     *fsnotify.Watcher
	config      *Config
	invalidator Invalidator
	logger      *slog.Logger
	debounce    *Debouncer

	mu      sync.Mutex
	pending map[string]bool
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a module watcher.
func New(config *Config, invalidator Invalidator, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:     fsw,
		config:      config,
		invalidator: invalidator,
		logger:      logger.With("component", "watch"),
		debounce:    NewDebouncer(config.DebounceInterval),
		pending:     map[string]bool{},
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Watch blocks processing events until the context is cancelled or Stop is
// called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addTree(w.config.Root); err != nil {
		return fmt.Errorf("failed to watch root: %w", err)
	}

	w.logger.Info("module watcher started",
		"root", w.config.Root,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("module watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("module watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("module watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return
	}

	module, ok := w.moduleFor(event.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	w.pending[module] = true
	w.mu.Unlock()

	w.debounce.Trigger(func() {
		w.mu.Lock()
		batch := w.pending
		w.pending = map[string]bool{}
		w.mu.Unlock()

		for path := range batch {
			w.logger.Info("module changed on disk, cache invalidated", "module", path)
			w.invalidator.Invalidate(path)
		}
	})
}

// moduleFor maps a changed file to the module path it affects: `.dsl`
// sources map to themselves, `.contract.json` files map back to the module
// they certify.
func (w *Watcher) moduleFor(file string) (string, bool) {
	rel, err := filepath.Rel(w.config.Root, file)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	switch {
	case strings.HasSuffix(rel, ".dsl"):
		return rel, true
	case strings.HasSuffix(rel, ".contract.json"):
		return strings.TrimSuffix(rel, ".contract.json") + ".dsl", true
	}
	return "", false
}

// Stop stops the watcher and cancels pending invalidations.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
		}
		return nil
	})
}

// Debouncer collects rapid events and fires the callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger arms the debouncer; the callback runs after the interval unless
// a newer trigger resets it.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
