// Package docsync mirrors an app source tree into a versioned docs tree.
//
// A run starts from a clean version directory, writes the landing pages,
// walks the source tree once and finishes with the license page. Folder
// manifests are reconciled bottom-up as the walk leaves each directory.
package docsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/autodoc/internal/appmeta"
	"git.home.luguber.info/inful/autodoc/internal/artifact"
	"git.home.luguber.info/inful/autodoc/internal/classify"
	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/manifest"
	"git.home.luguber.info/inful/autodoc/internal/metrics"
	"git.home.luguber.info/inful/autodoc/internal/pathmap"
	"git.home.luguber.info/inful/autodoc/internal/render"
)

const (
	modelsDir   = "models"
	apiDir      = "api"
	licensePage = "license.html"
)

// Synchronizer generates the docs tree for one app.
type Synchronizer struct {
	renderer    render.Renderer
	licenseFile string
	rules       classify.Rules
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithRules overrides the classifier rules.
func WithRules(r classify.Rules) Option {
	return func(s *Synchronizer) { s.rules = r.WithDefaults() }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Synchronizer) { s.recorder = metrics.OrNoop(r) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Synchronizer that renders through r and publishes the
// license read from licenseFile.
func New(r render.Renderer, licenseFile string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		renderer:    r,
		licenseFile: licenseFile,
		rules:       classify.DefaultRules(),
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run holds the state of one Synchronize call.
type run struct {
	ctx        context.Context
	s          *Synchronizer
	app        appmeta.AppContext
	log        *slog.Logger
	writer     *artifact.Writer
	classifier *classify.Classifier
	report     *Report

	sourceRoot string
	outputRoot string
	docsRoot   string
	modelsRoot string
	apiRoot    string

	modules map[string]bool
	// dirty folders had entries added since they were last reconciled.
	dirty      map[string]bool
	reconciled map[string]bool
}

// Synchronize regenerates outputRoot, the version directory directly below
// the docs root, from the app source at sourceRoot. Everything under
// outputRoot is deleted first; siblings of outputRoot are kept.
func (s *Synchronizer) Synchronize(ctx context.Context, sourceRoot, outputRoot string, app appmeta.AppContext) (*Report, error) {
	start := s.now()
	sourceRoot = filepath.Clean(sourceRoot)
	outputRoot = filepath.Clean(outputRoot)
	docsRoot := filepath.Dir(outputRoot)

	report := &Report{
		BuildID: uuid.NewString(),
		App:     app.Name,
		Version: filepath.Base(outputRoot),
		Started: start,
	}
	log := s.logger.With(logfields.BuildID(report.BuildID), logfields.App(app.Name), logfields.Version(report.Version))

	if err := s.validate(sourceRoot, outputRoot); err != nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return report, err
	}

	writer := artifact.New(s.renderer, artifact.WithRecorder(s.recorder), artifact.WithLogger(log))
	r := &run{
		ctx:        ctx,
		s:          s,
		app:        app,
		log:        log,
		writer:     writer,
		classifier: classify.New(sourceRoot, s.rules, docsRoot, outputRoot),
		report:     report,
		sourceRoot: sourceRoot,
		outputRoot: outputRoot,
		docsRoot:   docsRoot,
		modelsRoot: filepath.Join(outputRoot, modelsDir),
		apiRoot:    filepath.Join(outputRoot, apiDir),
		modules:    make(map[string]bool),
		dirty:      make(map[string]bool),
		reconciled: make(map[string]bool),
	}

	log.Info("Synchronizing docs", logfields.Path(sourceRoot), slog.String("output", outputRoot))
	err := r.execute()

	stats := writer.Stats()
	report.Written = stats.Written
	report.Skipped = stats.Skipped
	report.Duration = s.now().Sub(start)
	s.recorder.ObserveBuildDuration(report.Duration)

	if err != nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		log.Error("Synchronization failed", logfields.Error(err))
		return report, err
	}
	s.recorder.IncBuildOutcome(report.Outcome())
	log.Info("Synchronization complete",
		slog.Int("written", report.Written),
		slog.Int("skipped", report.Skipped),
		slog.Int("manifests_updated", report.ManifestsUpdated),
		slog.Int("missing_definitions", len(report.MissingDefinitions)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (s *Synchronizer) validate(sourceRoot, outputRoot string) error {
	if strings.TrimSpace(s.licenseFile) == "" {
		return aerrors.ConfigRequired("license_file")
	}
	info, err := os.Stat(sourceRoot)
	if err != nil {
		return aerrors.FileSystem("stat", sourceRoot, err)
	}
	if !info.IsDir() {
		return aerrors.ValidationFailed("source_root", "not a directory: "+sourceRoot)
	}
	if pathmap.Within(sourceRoot, outputRoot) {
		return aerrors.ValidationFailed("output_root", "must not contain the source root")
	}
	if filepath.Dir(outputRoot) == outputRoot {
		return aerrors.ValidationFailed("output_root", "must be a version directory below the docs root")
	}
	return nil
}

func (r *run) execute() error {
	if err := os.RemoveAll(r.outputRoot); err != nil {
		return aerrors.FileSystem("remove", r.outputRoot, err)
	}
	if err := os.MkdirAll(r.outputRoot, 0o755); err != nil {
		return aerrors.FileSystem("mkdir", r.outputRoot, err)
	}

	if err := r.writeLandingPages(); err != nil {
		return err
	}
	if err := r.ensure(r.modelsRoot, render.TemplateModelsHome, "Models"); err != nil {
		return err
	}
	if err := r.ensure(r.apiRoot, render.TemplateAPIHome, "API"); err != nil {
		return err
	}

	if err := r.visit(r.sourceRoot); err != nil {
		return err
	}
	if err := r.sweep(); err != nil {
		return err
	}

	if err := r.writeLicense(); err != nil {
		return err
	}
	return r.reconcile(r.docsRoot)
}

func (r *run) writeLandingPages() error {
	ctx := render.NewContext(r.app)
	if err := r.writer.Write(filepath.Join(r.docsRoot, manifest.IndexPage), render.TemplateDocsHome, ctx); err != nil {
		return err
	}
	return r.writer.Write(filepath.Join(r.outputRoot, manifest.IndexPage), render.TemplateDevHome, ctx)
}

// visit processes dir, then its subdirectories in name order, then
// reconciles the output folders dir contributed to.
func (r *run) visit(dir string) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return aerrors.FileSystem("readdir", dir, err)
	}
	var files, dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}

	facets := r.classifier.Classify(dir, files, dirs)
	if facets.Prune {
		r.log.Debug("Pruned", logfields.Path(dir))
		return nil
	}
	r.log.Debug("Classified", logfields.Path(dir), logfields.Label(string(facets.Label())))

	var owned []string
	if facets.PackageHome {
		folder, err := r.ensureModule(facets.ModuleName)
		if err != nil {
			return err
		}
		owned = append(owned, folder)
	}
	if facets.ModelName != "" {
		if err := r.writeModel(dir, facets); err != nil {
			return err
		}
	}
	if facets.CodePackage {
		folder, err := r.writeModules(dir, files)
		if err != nil {
			return err
		}
		owned = append(owned, folder)
	}

	for _, d := range dirs {
		if err := r.visit(filepath.Join(dir, d)); err != nil {
			return err
		}
	}

	for _, folder := range owned {
		if err := r.reconcile(folder); err != nil {
			return err
		}
	}
	return nil
}

// ensureModule creates models/<module> once per run.
func (r *run) ensureModule(module string) (string, error) {
	folder := filepath.Join(r.modelsRoot, module)
	if r.modules[module] {
		return folder, nil
	}
	ctx := render.NewContext(r.app)
	ctx.Title = module
	ctx.Name = module
	if err := r.ensureWith(folder, render.TemplateModuleHome, ctx); err != nil {
		return "", err
	}
	r.modules[module] = true
	return folder, nil
}

// definition is the part of a model definition file the docs use.
type definition struct {
	Name string `json:"name"`
}

func (r *run) writeModel(dir string, f classify.Facets) error {
	ctx := render.NewContext(r.app)
	ctx.Name = f.ModuleName

	// An existing page wins; its definition is not read again.
	page := filepath.Join(r.modelsRoot, f.ModuleName, f.ModelName+".html")
	if _, err := os.Stat(page); err == nil {
		_, err := r.writer.WriteIfAbsent(page, render.TemplateDoctype, ctx)
		return err
	}

	defPath := filepath.Join(dir, f.ModelName+".json")
	name, err := readDefinitionName(defPath)
	if err != nil {
		r.report.MissingDefinitions = append(r.report.MissingDefinitions, dir)
		r.log.Warn("Skipping model without definition",
			logfields.Path(defPath), logfields.Model(f.ModelName), logfields.Error(err))
		return nil
	}

	folder, err := r.ensureModule(f.ModuleName)
	if err != nil {
		return err
	}
	ctx.Title = name
	ctx.Doctype = name
	written, err := r.writer.WriteIfAbsent(filepath.Join(folder, f.ModelName+".html"), render.TemplateDoctype, ctx)
	if err != nil {
		return err
	}
	if written {
		r.dirty[folder] = true
	}
	return nil
}

func readDefinitionName(path string) (string, error) {
	// #nosec G304 -- path is built from a walked directory under the source root
	data, err := os.ReadFile(path)
	if err != nil {
		return "", aerrors.MissingDefinition(path, err)
	}
	var def definition
	if err := json.Unmarshal(data, &def); err != nil {
		return "", aerrors.MissingDefinition(path, fmt.Errorf("parse definition: %w", err))
	}
	if strings.TrimSpace(def.Name) == "" {
		return "", aerrors.MissingDefinition(path, errors.New("definition has no name"))
	}
	return def.Name, nil
}

// writeModules mirrors a code package into api/ and writes one page per code
// file. Missing intermediate folders get their own index pages.
func (r *run) writeModules(dir string, files []string) (string, error) {
	folder, err := pathmap.Map(dir, r.sourceRoot, r.apiRoot)
	if err != nil {
		return "", err
	}
	rel, err := pathmap.Rel(folder, r.apiRoot)
	if err != nil {
		return "", err
	}
	current := r.apiRoot
	for _, seg := range pathmap.Segments(rel) {
		current = filepath.Join(current, seg)
		if err := r.ensure(current, render.TemplatePackageIndex, seg); err != nil {
			return "", err
		}
	}

	initStem := strings.TrimSuffix(r.s.rules.InitMarker, filepath.Ext(r.s.rules.InitMarker))
	for _, name := range files {
		if !r.classifier.IsCodeFile(name) {
			continue
		}
		module, err := moduleName(r.app.Name, r.sourceRoot, filepath.Join(dir, name), initStem)
		if err != nil {
			return "", err
		}
		ctx := render.NewContext(r.app)
		ctx.Name = module
		ctx.Title = module
		written, err := r.writer.WriteIfAbsent(filepath.Join(folder, module+".html"), render.TemplatePyModule, ctx)
		if err != nil {
			return "", err
		}
		if written {
			r.dirty[folder] = true
		}
	}
	return folder, nil
}

func (r *run) ensure(folder, templateID, title string) error {
	ctx := render.NewContext(r.app)
	ctx.Title = title
	return r.ensureWith(folder, templateID, ctx)
}

func (r *run) ensureWith(folder, templateID string, ctx render.Context) error {
	created, err := r.writer.EnsureFolder(folder, templateID, ctx)
	if err != nil {
		return err
	}
	if created {
		r.dirty[folder] = true
		r.dirty[filepath.Dir(folder)] = true
	}
	return nil
}

func (r *run) reconcile(folder string) error {
	changed, err := manifest.Reconcile(folder)
	if err != nil {
		return aerrors.FileSystem("reconcile", folder, err)
	}
	r.s.recorder.IncManifest(changed)
	if changed {
		r.report.ManifestsUpdated++
		r.log.Info("Updating index", logfields.Path(manifest.Path(folder)))
	}
	delete(r.dirty, folder)
	r.reconciled[folder] = true
	return nil
}

// sweep reconciles every folder below the docs root that still has
// unreconciled additions, deepest first.
func (r *run) sweep() error {
	var pending []string
	for folder, dirty := range r.dirty {
		if dirty && folder != r.docsRoot && pathmap.Within(folder, r.outputRoot) {
			pending = append(pending, folder)
		}
	}
	for _, folder := range []string{r.modelsRoot, r.apiRoot, r.outputRoot} {
		if !r.reconciled[folder] && !slices.Contains(pending, folder) {
			pending = append(pending, folder)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		di, dj := depth(pending[i]), depth(pending[j])
		if di != dj {
			return di > dj
		}
		return pending[i] < pending[j]
	})
	for _, folder := range pending {
		if err := r.reconcile(folder); err != nil {
			return err
		}
	}
	return nil
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

func (r *run) writeLicense() error {
	// #nosec G304 -- license path comes from configuration
	src, err := os.ReadFile(r.s.licenseFile)
	if err != nil {
		return aerrors.LicenseMissing(r.s.licenseFile, err)
	}
	text, err := render.Markdown(src)
	if err != nil {
		return err
	}
	ctx := render.NewContext(r.app)
	ctx.Title = "License"
	ctx.LicenseText = text
	return r.writer.Write(filepath.Join(r.docsRoot, licensePage), render.TemplateLicense, ctx)
}
