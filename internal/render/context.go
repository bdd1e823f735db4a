package render

import (
	"html/template"
	"maps"

	"git.home.luguber.info/inful/autodoc/internal/appmeta"
)

// Context is the data every template receives. App is always set; the other
// fields are filled per page kind. Extra is merged last and is free-form.
type Context struct {
	App appmeta.AppContext

	// Title is a folder or page title; Name a module or package identifier.
	Title string
	Name  string
	// Doctype is the display name of a model, read from its definition.
	Doctype string

	LicenseText template.HTML
	// Body is the inner HTML of a page being published.
	Body template.HTML
	Site *Site

	Extra map[string]any
}

// Site carries the chrome used when publishing into a static site.
type Site struct {
	BrandHTML   template.HTML
	TopBarItems []NavItem
	Favicon     string
	OnlyStatic  bool
	BaseURL     string
}

// NavItem is a top bar link.
type NavItem struct {
	Label string
	URL   string
	Right bool
}

// NewContext returns a Context for app, with the app's extras (such as
// source_commit) copied into Extra.
func NewContext(app appmeta.AppContext) Context {
	c := Context{App: app}
	for k, v := range app.Extras() {
		c = c.WithExtra(k, v)
	}
	return c
}

// WithExtra returns a copy of c with key set in Extra.
func (c Context) WithExtra(key string, value any) Context {
	c.Extra = maps.Clone(c.Extra)
	if c.Extra == nil {
		c.Extra = make(map[string]any)
	}
	c.Extra[key] = value
	return c
}
