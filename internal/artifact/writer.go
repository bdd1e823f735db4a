// Package artifact renders page contexts and persists them as output files.
package artifact

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/logfields"
	"git.home.luguber.info/inful/autodoc/internal/manifest"
	"git.home.luguber.info/inful/autodoc/internal/metrics"
	"git.home.luguber.info/inful/autodoc/internal/render"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Stats counts the outcome of writes made through a Writer.
type Stats struct {
	Written int
	Skipped int
}

// Writer renders templates and writes the result to disk. Parent directories
// are created as needed. A Writer is not safe for concurrent use.
type Writer struct {
	renderer render.Renderer
	recorder metrics.Recorder
	logger   *slog.Logger
	stats    Stats
}

// Option configures a Writer.
type Option func(*Writer)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Writer) { w.recorder = metrics.OrNoop(r) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Writer rendering through r.
func New(r render.Renderer, opts ...Option) *Writer {
	w := &Writer{
		renderer: r,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns the counts accumulated so far.
func (w *Writer) Stats() Stats { return w.stats }

// WriteIfAbsent renders templateID and writes it to path unless a file is
// already there. It reports whether the file was written; an existing file is
// not an error.
func (w *Writer) WriteIfAbsent(path, templateID string, ctx render.Context) (bool, error) {
	kind := kindFor(templateID)
	if exists(path) {
		w.skip(path, kind)
		return false, nil
	}

	data, err := w.render(path, templateID, kind, ctx)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		w.recorder.IncArtifact(kind, metrics.ResultFailed)
		return false, aerrors.FileSystem("mkdir", filepath.Dir(path), err)
	}
	// #nosec G304 -- path is produced by the path mapper under the output root
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			w.skip(path, kind)
			return false, nil
		}
		w.recorder.IncArtifact(kind, metrics.ResultFailed)
		return false, aerrors.FileSystem("create", path, err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		w.recorder.IncArtifact(kind, metrics.ResultFailed)
		return false, aerrors.FileSystem("write", path, err)
	}
	w.written(path, kind)
	return true, nil
}

// Write renders templateID and writes it to path, replacing any existing file.
func (w *Writer) Write(path, templateID string, ctx render.Context) error {
	kind := kindFor(templateID)
	data, err := w.render(path, templateID, kind, ctx)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		w.recorder.IncArtifact(kind, metrics.ResultFailed)
		return err
	}
	w.written(path, kind)
	return nil
}

// WriteRaw writes data to path. When overwrite is false an existing file is
// left alone and false is returned.
func (w *Writer) WriteRaw(path string, data []byte, overwrite bool) (bool, error) {
	if !overwrite && exists(path) {
		w.skip(path, metrics.KindRaw)
		return false, nil
	}
	if err := writeFile(path, data); err != nil {
		w.recorder.IncArtifact(metrics.KindRaw, metrics.ResultFailed)
		return false, err
	}
	w.written(path, metrics.KindRaw)
	return true, nil
}

// EnsureFolder creates dir with an empty manifest and an index page rendered
// from templateID (package_index.html when empty). An existing directory is
// left untouched and false is returned. ctx.Title defaults to the directory
// name.
func (w *Writer) EnsureFolder(dir, templateID string, ctx render.Context) (bool, error) {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, aerrors.FileSystem("mkdir", dir, errors.New("exists and is not a directory"))
		}
		return false, nil
	}
	if templateID == "" {
		templateID = render.TemplatePackageIndex
	}
	if ctx.Title == "" {
		ctx.Title = filepath.Base(dir)
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return false, aerrors.FileSystem("mkdir", dir, err)
	}
	if _, err := w.WriteRaw(manifest.Path(dir), nil, false); err != nil {
		return false, err
	}
	if _, err := w.WriteIfAbsent(filepath.Join(dir, manifest.IndexPage), templateID, ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Writer) render(path, templateID, kind string, ctx render.Context) ([]byte, error) {
	data, err := w.renderer.Render(templateID, ctx)
	if err != nil {
		w.recorder.IncArtifact(kind, metrics.ResultFailed)
		w.logger.Error("Render failed", logfields.Path(path), logfields.Template(templateID), logfields.Error(err))
		return nil, err
	}
	return data, nil
}

func (w *Writer) written(path, kind string) {
	w.stats.Written++
	w.recorder.IncArtifact(kind, metrics.ResultWritten)
	w.logger.Info("Writing "+filepath.Base(path), logfields.Path(path))
}

func (w *Writer) skip(path, kind string) {
	w.stats.Skipped++
	w.recorder.IncArtifact(kind, metrics.ResultSkipped)
	w.logger.Debug("Already exists", logfields.Path(path))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return aerrors.FileSystem("mkdir", filepath.Dir(path), err)
	}
	// #nosec G306 -- generated docs are served as static files
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return aerrors.FileSystem("write", path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func kindFor(templateID string) string {
	switch templateID {
	case render.TemplateDocsHome, render.TemplateDevHome:
		return metrics.KindLanding
	case render.TemplateDoctype:
		return metrics.KindModel
	case render.TemplatePyModule:
		return metrics.KindModule
	case render.TemplateLicense:
		return metrics.KindLicense
	case render.TemplateBase:
		return metrics.KindPage
	default:
		return metrics.KindFolder
	}
}
