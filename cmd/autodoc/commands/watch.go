package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/autodoc/internal/metrics"
	"git.home.luguber.info/inful/autodoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	App         string        `arg:"" help:"App identifier"`
	DocsVersion string        `name:"docs-version" help:"Docs version directory to generate (default from config)"`
	Interval    time.Duration `help:"Also rebuild periodically at this interval (0 disables)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	env, err := prepareApp(g, root, w.App, versionOpts{explicit: w.DocsVersion})
	if err != nil {
		return err
	}
	debounce, err := env.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}
	interval := w.Interval
	if interval == 0 {
		if interval, err = env.cfg.Watch.IntervalDuration(); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	build := func(ctx context.Context, _ string) error {
		_, err := RunBuild(ctx, env, metrics.NoopRecorder{})
		return err
	}
	watcher := watch.New(env.paths.SourceRoot, build,
		watch.WithDebounce(debounce),
		watch.WithInterval(interval),
		watch.WithIgnored(env.paths.DocsRoot),
		watch.WithLogger(env.logger),
	)

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", env.paths.SourceRoot)
	return watcher.Run(ctx)
}
