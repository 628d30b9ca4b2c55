package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/sdclint/pkg/component"
)

// Triggers passed to RunFunc.
const (
	TriggerStart    = "start"
	TriggerChange   = "watch"
	TriggerSchedule = "schedule"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc validates components. only holds the definition paths to
// validate, or is nil for a full run.
type RunFunc func(ctx context.Context, trigger string, only map[string]bool) error

// Config contains configuration for the Watcher.
type Config struct {
	// Paths are the project directories to watch.
	Paths []string

	// Debounce is the quiet period after the last change before a run.
	Debounce time.Duration

	// Schedule optionally runs a full validation on a cron schedule.
	Schedule string
}

// Watcher re-validates components when their files change.
type Watcher struct {
	config    Config
	run       RunFunc
	logger    *slog.Logger
	fs        *fsnotify.Watcher
	debounce  *Debouncer
	scheduler *Scheduler

	// runMu serializes runs; pending collects changes between runs.
	runMu     sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]bool

	hasRun  atomic.Bool
	lastRun atomic.Int64
	running atomic.Bool
}

// New creates a watcher over cfg.Paths.
func New(cfg Config, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if run == nil {
		return nil, errors.New("nil run function")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		config:    cfg,
		run:       run,
		logger:    logger,
		fs:        fsw,
		debounce:  NewDebouncer(cfg.Debounce),
		scheduler: NewScheduler(cfg.Schedule, logger),
		pending:   make(map[string]bool),
	}, nil
}

// Watch runs a full validation, then re-validates changed components until
// ctx is cancelled. Run errors are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return errors.New("watcher already running")
	}
	defer w.close()

	for _, path := range w.config.Paths {
		if err := w.addDirectory(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	if err := w.scheduler.Start(ctx, func(ctx context.Context) {
		w.execute(ctx, TriggerSchedule, nil)
	}); err != nil {
		return err
	}

	w.logger.Info("File watcher started",
		"paths", w.config.Paths,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)
	w.execute(ctx, TriggerStart, nil)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

// HasRun reports whether at least one validation finished.
func (w *Watcher) HasRun() bool {
	return w.hasRun.Load()
}

// LastRun returns the end time of the last validation.
func (w *Watcher) LastRun() time.Time {
	if ns := w.lastRun.Load(); ns != 0 {
		return time.Unix(0, ns)
	}
	return time.Time{}
}

// NextScheduled returns the next scheduled full validation, if any.
func (w *Watcher) NextScheduled() *time.Time {
	return w.scheduler.NextRun()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectory(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !shouldProcess(event) {
		return
	}

	def := component.DefinitionFor(event.Name)
	abs, err := filepath.Abs(def)
	if err == nil {
		def = abs
	}

	w.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())

	w.pendingMu.Lock()
	w.pending[def] = true
	w.pendingMu.Unlock()

	w.debounce.Trigger(func() {
		w.pendingMu.Lock()
		only := w.pending
		w.pending = make(map[string]bool)
		w.pendingMu.Unlock()

		if len(only) == 0 {
			return
		}
		w.logger.Info("Components changed", "definitions", slices.Sorted(maps.Keys(only)))
		w.execute(ctx, TriggerChange, only)
	})
}

// execute runs one validation at a time.
func (w *Watcher) execute(ctx context.Context, trigger string, only map[string]bool) {
	if ctx.Err() != nil {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()

	if err := w.run(ctx, trigger, only); err != nil {
		w.logger.Error("Validation failed", "trigger", trigger, "error", err)
	}
	w.lastRun.Store(time.Now().UnixNano())
	w.hasRun.Store(true)
}

// addDirectory watches dir and its subdirectories. Hidden and vendored
// directories are skipped.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && skipDir(entry.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) close() {
	w.debounce.Stop()
	w.scheduler.Stop()
	if err := w.fs.Close(); err != nil {
		w.logger.Warn("Failed to close file watcher", "error", err)
	}
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor"
}

// shouldProcess reports whether event concerns a template or definition.
func shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return component.DefinitionFor(event.Name) != ""
}
