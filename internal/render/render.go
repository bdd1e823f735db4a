// Package render turns page contexts into HTML through named templates.
//
// Default templates are embedded; a project may override any of them by
// placing a file with the same name in its templates directory.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/markdown"
)

// Template identifiers.
const (
	TemplateDocsHome     = "docs_home.html"
	TemplateDevHome      = "dev_home.html"
	TemplateModelsHome   = "models_home.html"
	TemplateAPIHome      = "api_home.html"
	TemplateModuleHome   = "module_home.html"
	TemplatePackageIndex = "package_index.html"
	TemplateDoctype      = "doctype.html"
	TemplatePyModule     = "pymodule.html"
	TemplateLicense      = "license.html"
	TemplateBase         = "base_template.html"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// Renderer produces markup for a template and context. Implementations must
// be deterministic for identical inputs.
type Renderer interface {
	Render(templateID string, ctx Context) ([]byte, error)
}

// TemplateRenderer renders html/template files.
type TemplateRenderer struct {
	tpl *template.Template
}

// Funcs are available in every template.
func Funcs() template.FuncMap {
	titler := cases.Title(language.English)
	return template.FuncMap{
		"title": func(s string) string {
			return titler.String(strings.NewReplacer("_", " ", "-", " ").Replace(s))
		},
		"markdown": func(s string) (template.HTML, error) {
			out, err := markdown.ToHTML([]byte(s))
			// #nosec G203 -- markdown sources are the app's own files
			return template.HTML(out), err
		},
	}
}

// NewTemplateRenderer parses the embedded templates, then every *.html file
// in overrideDir (if set), which replaces defaults of the same name.
func NewTemplateRenderer(overrideDir string) (*TemplateRenderer, error) {
	tpl, err := template.New("autodoc").Funcs(Funcs()).ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, aerrors.InternalError("parse default templates", err)
	}

	if overrideDir != "" {
		fsys := os.DirFS(overrideDir)
		matches, err := fs.Glob(fsys, "*.html")
		if err != nil {
			return nil, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "list template overrides").
				WithContext("path", overrideDir)
		}
		if len(matches) > 0 {
			if tpl, err = tpl.ParseFS(fsys, matches...); err != nil {
				return nil, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "parse template overrides").
					WithContext("path", overrideDir)
			}
		}
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(templateID string, ctx Context) ([]byte, error) {
	if r.tpl.Lookup(templateID) == nil {
		return nil, aerrors.RenderFailed(templateID, fmt.Errorf("template %q not defined", templateID))
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, templateID, ctx); err != nil {
		return nil, aerrors.RenderFailed(templateID, err)
	}
	return buf.Bytes(), nil
}

// Markdown converts src to an HTML fragment.
func Markdown(src []byte) (template.HTML, error) {
	out, err := markdown.ToHTML(src)
	if err != nil {
		return "", aerrors.RenderFailed("markdown", err)
	}
	// #nosec G203 -- markdown sources are the app's own files
	return template.HTML(out), nil
}
