package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/autodoc/internal/docsync"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	App            string `arg:"" help:"App identifier"`
	DocsVersion    string `name:"docs-version" help:"Docs version directory to generate (default from config)"`
	VersionFromGit bool   `name:"version-from-git" help:"Use the git tag or short commit of the source tree as docs version"`
	MetricsFile    string `name:"metrics-file" type:"path" help:"Write Prometheus metrics in textfile format to this path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	env, err := prepareApp(g, root, b.App, versionOpts{explicit: b.DocsVersion, fromGit: b.VersionFromGit})
	if err != nil {
		return err
	}

	var prom *metrics.PrometheusRecorder
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		rec = prom
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := RunBuild(ctx, env, rec)
	if prom != nil {
		if werr := prom.WriteTextfile(b.MetricsFile); werr != nil {
			env.logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Built %s docs %q: %d written, %d skipped, %d indexes updated\n",
		report.App, report.Version, report.Written, report.Skipped, report.ManifestsUpdated)
	for _, def := range report.MissingDefinitions {
		fmt.Printf("  missing model definition: %s\n", def)
	}
	return nil
}

// RunBuild synchronizes the docs tree of the prepared app once.
func RunBuild(ctx context.Context, env *appEnv, rec metrics.Recorder) (*docsync.Report, error) {
	syncer := docsync.New(env.renderer, env.paths.LicenseFile,
		docsync.WithRules(env.cfg.Layout),
		docsync.WithRecorder(rec),
		docsync.WithLogger(env.logger),
	)
	return syncer.Synchronize(ctx, env.paths.SourceRoot, env.paths.OutputRoot(env.version), env.app)
}
