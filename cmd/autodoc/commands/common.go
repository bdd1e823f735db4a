package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/autodoc/internal/appmeta"
	"git.home.luguber.info/inful/autodoc/internal/config"
	"git.home.luguber.info/inful/autodoc/internal/git"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/render"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"autodoc.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Generate the docs tree of an app"`
	Publish   PublishCmd   `cmd:"" help:"Render the docs tree into a static site"`
	SyncPages SyncPagesCmd `cmd:"" name:"sync-pages" help:"Load the page database from the docs tree"`
	Watch     WatchCmd     `cmd:"" help:"Rebuild the docs tree whenever the app source changes"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if l, ok := config.ParseLogLevel(os.Getenv(config.LogLevelEnv)); ok {
		level = l
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	setLogger(g, level)
	return nil
}

func setLogger(g *Global, level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
}

// loadConfig reads the configuration. A missing file is only an error when
// the path was given explicitly.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.Config == config.DefaultPath {
		cfg, err = config.LoadOptional(c.Config)
	} else {
		cfg, err = config.Load(c.Config)
	}
	if err != nil {
		return nil, err
	}
	// log_level from the file applies only when neither -v nor the env var set one.
	if _, fromEnv := config.ParseLogLevel(os.Getenv(config.LogLevelEnv)); !c.Verbose && !fromEnv && cfg.LogLevel != "" {
		if l, ok := config.ParseLogLevel(cfg.LogLevel); ok {
			setLogger(g, l)
		}
	}
	return cfg, nil
}

// appEnv is everything a command needs to work on one app.
type appEnv struct {
	cfg      *config.Config
	paths    config.AppPaths
	version  string
	renderer *render.TemplateRenderer
	app      appmeta.AppContext
	logger   *slog.Logger
}

// versionOpts selects the docs version label of a run.
type versionOpts struct {
	explicit string
	fromGit  bool
}

func prepareApp(g *Global, root *CLI, appID string, vo versionOpts) (*appEnv, error) {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return nil, err
	}
	paths, err := cfg.App(appID)
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With(logfields.App(appID))

	rev, revErr := git.Describe(paths.SourceRoot)
	switch {
	case revErr == nil:
	case errors.Is(revErr, git.ErrNotRepository):
		logger.Debug("Source tree is not in a git repository", logfields.Path(paths.SourceRoot))
	default:
		logger.Warn("Failed to describe source revision", logfields.Error(revErr))
	}

	version := cfg.DefaultVersion
	switch {
	case vo.explicit != "":
		version = vo.explicit
	case vo.fromGit && revErr == nil:
		version = rev.Label(cfg.DefaultVersion)
	}
	if err := config.ValidateVersion(version); err != nil {
		return nil, err
	}

	renderer, err := render.NewTemplateRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	opts := []appmeta.Option{appmeta.WithDocsVersion(version)}
	if revErr == nil {
		opts = append(opts, appmeta.WithExtra("source_commit", rev.Commit))
	}
	app, err := appmeta.Load(appmeta.NewYAMLProvider(paths.MetadataFile), appID, opts...)
	if err != nil {
		return nil, err
	}

	return &appEnv{
		cfg:      cfg,
		paths:    paths,
		version:  version,
		renderer: renderer,
		app:      app,
		logger:   logger.With(logfields.Version(version)),
	}, nil
}
