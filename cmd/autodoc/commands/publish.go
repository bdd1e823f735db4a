package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	App         string `arg:"" help:"App identifier"`
	Target      string `arg:"" type:"path" help:"Directory the site is written to (replaced)"`
	Local       bool   `help:"Link pages relative to the site root instead of the app's docs base URL"`
	PagesDB     string `name:"pages-db" type:"path" help:"Read the page list from this database instead of walking the docs tree"`
	DocsVersion string `name:"docs-version" help:"Docs version the Developer link points at (default from config)"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	env, err := prepareApp(g, root, p.App, versionOpts{explicit: p.DocsVersion})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPath := p.PagesDB
	if dbPath == "" {
		dbPath = env.cfg.Publish.PagesDB
	}

	var lister publish.PageLister = publish.NewFSLister(env.paths.DocsRoot)
	if dbPath != "" {
		store, err := publish.NewSQLiteStore(dbPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				env.logger.Warn("Failed to close page database", logfields.Error(err))
			}
		}()
		lister = store
		env.logger.Info("Reading pages from database", logfields.Path(dbPath))
	}

	pub := publish.New(env.paths.DocsRoot, env.app, env.renderer, lister,
		publish.WithLocal(p.Local),
		publish.WithFavicon(env.cfg.Publish.Favicon),
		publish.WithDeveloperVersion(env.version),
		publish.WithLogger(env.logger),
	)
	res, err := pub.Publish(ctx, p.Target)
	if err != nil {
		return err
	}
	if res.Pages == 0 && dbPath != "" {
		env.logger.Warn("No pages published; run sync-pages to fill the page database", logfields.Path(dbPath))
	}

	fmt.Printf("Published %d pages to %s\n", res.Pages, p.Target)
	for _, route := range res.Missing {
		fmt.Printf("  missing page source: %s\n", route)
	}
	return nil
}
