// Package watch re-runs a callback when an exchange document changes on
// disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the document must stay quiet before the
	// callback runs. Editors usually write a file in several steps.
	Debounce time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns default watcher options.
func DefaultOptions() Options {
	return Options{Debounce: 500 * time.Millisecond}
}

// Handler is called with the document path after each settled change.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single document. Its directory is watched so that
// documents replaced by rename are still seen.
type Watcher struct {
	path    string
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// New starts watching the directory of path. Events are delivered once Run
// is called.
func New(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:    abs,
		opts:    opts,
		logger:  logger.With("component", "watch", "path", abs),
		watcher: fw,
	}, nil
}

// Path returns the absolute path of the watched document.
func (w *Watcher) Path() string { return w.path }

// Run calls fn after every settled change of the document until ctx is
// done. Handler errors are logged and do not stop the watcher. Run closes
// the watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.logger.Debug("document changed", "op", ev.Op.String())
			timer.Reset(w.opts.Debounce)
		case <-timer.C:
			if err := fn(ctx, w.path); err != nil {
				w.logger.Warn("handler failed", "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
