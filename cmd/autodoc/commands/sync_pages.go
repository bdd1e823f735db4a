package commands

import (
	"context"
	"fmt"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/publish"
)

// SyncPagesCmd implements the 'sync-pages' command.
type SyncPagesCmd struct {
	App     string `arg:"" help:"App identifier"`
	PagesDB string `name:"pages-db" type:"path" help:"Page database to fill (default publish.pages_db from config)"`
}

func (s *SyncPagesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	paths, err := cfg.App(s.App)
	if err != nil {
		return err
	}

	dbPath := s.PagesDB
	if dbPath == "" {
		dbPath = cfg.Publish.PagesDB
	}
	if dbPath == "" {
		return aerrors.ConfigRequired("pages_db")
	}

	store, err := publish.NewSQLiteStore(dbPath)
	if err != nil {
		return aerrors.FileSystem("open", dbPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			g.Logger.Warn("Failed to close page database", logfields.Error(err))
		}
	}()

	n, err := store.SyncPages(context.Background(), publish.NewFSLister(paths.DocsRoot))
	if err != nil {
		return err
	}
	g.Logger.Info("Page database synchronized", logfields.App(s.App), logfields.Path(dbPath), logfields.Count(n))
	fmt.Printf("Stored %d pages in %s\n", n, dbPath)
	return nil
}
