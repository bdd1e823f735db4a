// Package publish renders a generated docs tree into a static site.
//
// Every page listed by a PageLister is re-wrapped in the site base template
// with the app's navigation chrome. The site is staged beside the target
// and merged into it at the end.
package publish

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/autodoc/internal/appmeta"
	"git.home.luguber.info/inful/autodoc/internal/artifact"
	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/manifest"
	"git.home.luguber.info/inful/autodoc/internal/metrics"
	"git.home.luguber.info/inful/autodoc/internal/render"
	"git.home.luguber.info/inful/autodoc/internal/workspace"
)

const (
	assetsDir      = "assets"
	defaultFavicon = "/assets/img/favicon.ico"
)

var assetSubdirs = []string{"js", "css", "img"}

// Result summarizes a publish run.
type Result struct {
	Pages   int
	Missing []string
}

// Publisher writes a docs tree into a target directory.
type Publisher struct {
	docsRoot string
	app      appmeta.AppContext
	renderer render.Renderer
	lister   PageLister
	version  string
	favicon  string
	local    bool
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLocal makes links relative to the site root instead of the app's docs base URL.
func WithLocal(local bool) Option {
	return func(p *Publisher) { p.local = local }
}

// WithFavicon sets the favicon path below the base URL.
func WithFavicon(f string) Option {
	return func(p *Publisher) {
		if f != "" {
			p.favicon = f
		}
	}
}

// WithDeveloperVersion sets the version the Developer link points at.
func WithDeveloperVersion(v string) Option {
	return func(p *Publisher) {
		if v != "" {
			p.version = v
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) { p.recorder = metrics.OrNoop(r) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Publisher for the docs tree at docsRoot.
func New(docsRoot string, app appmeta.AppContext, r render.Renderer, lister PageLister, opts ...Option) *Publisher {
	p := &Publisher{
		docsRoot: filepath.Clean(docsRoot),
		app:      app,
		renderer: r,
		lister:   lister,
		version:  "current",
		favicon:  defaultFavicon,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	if app.DocsVersion != "" {
		p.version = app.DocsVersion
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BaseURL returns the prefix for site links: empty for a local site.
func (p *Publisher) BaseURL() string {
	if p.local {
		return ""
	}
	return p.app.BaseURL
}

// Site returns the navigation chrome applied to every page.
func (p *Publisher) Site() *render.Site {
	base := p.BaseURL()
	return &render.Site{
		// #nosec G203 -- the brand is the app's own title, escaped here
		BrandHTML: template.HTML(template.HTMLEscapeString(p.app.Title)),
		TopBarItems: []render.NavItem{
			{Label: "User", URL: base + "/", Right: true},
			{Label: "Developer", URL: base + "/" + p.version, Right: true},
			{Label: "About", URL: base + "/user/about", Right: true},
		},
		Favicon:    p.favicon,
		OnlyStatic: true,
		BaseURL:    base,
	}
}

// Publish renders every listed page into target. Files in target that
// publishing does not produce are left in place.
func (p *Publisher) Publish(ctx context.Context, target string) (*Result, error) {
	log := p.logger.With(logfields.App(p.app.Name), logfields.Target(target))

	pages, err := p.lister.ListPages(ctx)
	if err != nil {
		return nil, aerrors.PublishFailed("list", err)
	}

	ws := workspace.ForTarget(target, "publish")
	if err := ws.Create(); err != nil {
		return nil, aerrors.PublishFailed("stage", err)
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			log.Warn("Failed to clean up staging directory", logfields.Error(err))
		}
	}()

	writer := artifact.New(p.renderer, artifact.WithRecorder(p.recorder), artifact.WithLogger(log))
	site := p.Site()
	res := &Result{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := p.publishPage(writer, ws.GetPath(), page, site)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Missing = append(res.Missing, page.Route())
			log.Warn("Page source missing", logfields.Page(page.Route()))
			continue
		}
		res.Pages++
	}

	if err := p.copyAssets(ws.GetPath()); err != nil {
		return nil, err
	}
	if err := ws.Promote(target); err != nil {
		return nil, aerrors.PublishFailed("promote", err)
	}
	log.Info("Published docs", logfields.Count(res.Pages))
	return res, nil
}

// source resolves a route to <docs>/<route>.html or <docs>/<route>/index.html,
// returning the path relative to the docs root.
func (p *Publisher) source(route string) (string, bool) {
	for _, rel := range []string{route + ".html", path.Join(route, manifest.IndexPage)} {
		if isFile(filepath.Join(p.docsRoot, filepath.FromSlash(rel))) {
			return filepath.FromSlash(rel), true
		}
	}
	return "", false
}

func (p *Publisher) publishPage(w *artifact.Writer, stage string, page Page, site *render.Site) (bool, error) {
	rel, ok := p.source(page.Route())
	if !ok {
		return false, nil
	}
	src := filepath.Join(p.docsRoot, rel)
	f, err := os.Open(src) // #nosec G304 -- resolved below the docs root
	if err != nil {
		return false, aerrors.PublishFailed("read", err)
	}
	doc, err := extract(f)
	_ = f.Close()
	if err != nil {
		return false, aerrors.PublishFailed("parse", fmt.Errorf("%s: %w", src, err))
	}

	ctx := render.NewContext(p.app)
	ctx.Title = doc.Title
	if ctx.Title == "" {
		ctx.Title = page.PageName
	}
	// #nosec G203 -- body comes from pages this tool generated
	ctx.Body = template.HTML(doc.Body)
	ctx.Site = site
	if err := w.Write(filepath.Join(stage, rel), render.TemplateBase, ctx); err != nil {
		return false, err
	}
	return true, nil
}

// copyAssets copies <docs>/assets when present and makes sure the standard
// asset folders exist.
func (p *Publisher) copyAssets(stage string) error {
	src := filepath.Join(p.docsRoot, assetsDir)
	dst := filepath.Join(stage, assetsDir)
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil && !errors.Is(err, fs.ErrExist) {
			return aerrors.PublishFailed("assets", err)
		}
	}
	for _, d := range assetSubdirs {
		if err := os.MkdirAll(filepath.Join(dst, d), 0o755); err != nil {
			return aerrors.PublishFailed("assets", err)
		}
	}
	return nil
}
