// Package watch rebuilds docs when the app source changes and, optionally,
// on a fixed interval.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/pathmap"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one rebuild. reason is "initial", "change" or "schedule".
type BuildFunc func(ctx context.Context, reason string) error

// Watcher triggers BuildFunc for source changes. Rebuilds never overlap;
// requests that arrive during a rebuild collapse into one rerun.
type Watcher struct {
	root     string
	ignored  []string
	debounce time.Duration
	interval time.Duration
	build    BuildFunc
	logger   *slog.Logger

	requests chan string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInterval adds a periodic rebuild; zero disables it.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithIgnored excludes directories (typically the docs output tree) from watching.
func WithIgnored(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if d != "" {
				w.ignored = append(w.ignored, filepath.Clean(d))
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Watcher for the tree at root.
func New(root string, build BuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		build:    build,
		logger:   slog.Default(),
		requests: make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once, then watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	w.addDirsRecursive(watcher, w.root)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()

	w.request("initial")

	if w.interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	trigger, stop := newDebouncer(w.debounce, func() { w.request("change") })
	defer stop()

	w.logger.Info("Watching for changes", logfields.Path(w.root))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.request("schedule") }),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	w.logger.Info("Scheduled periodic rebuild", slog.Duration("interval", w.interval))
	return s, nil
}

// request queues a rebuild; a request already pending absorbs it.
func (w *Watcher) request(reason string) {
	select {
	case w.requests <- reason:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.requests:
			start := time.Now()
			w.logger.Info("Rebuilding docs", slog.String("reason", reason))
			if err := w.build(ctx, reason); err != nil {
				w.logger.Warn("Rebuild failed", slog.String("reason", reason), logfields.Error(err))
				continue
			}
			w.logger.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.shouldIgnore(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(watcher, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnore reports whether a change at path must not trigger a rebuild.
func (w *Watcher) shouldIgnore(path string) bool {
	for _, dir := range w.ignored {
		if pathmap.Within(path, dir) {
			return true
		}
	}
	return ignoredName(filepath.Base(path))
}

func ignoredName(base string) bool {
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasSuffix(base, ".pyc"),
		base == "__pycache__",
		base == "node_modules":
		return true
	}
	return false
}
