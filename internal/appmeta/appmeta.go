// Package appmeta provides the descriptive metadata of the documented app.
//
// Metadata is read once through a Provider and frozen into an AppContext,
// which is passed by value into every render call.
package appmeta

import (
	"html/template"
	"maps"
	"strings"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/markdown"
)

// Provider looks up app metadata by app identifier.
type Provider interface {
	AppMetadata(appID string) (Metadata, error)
}

// Metadata is the raw record a Provider returns. All fields are required.
type Metadata struct {
	Title       string `yaml:"app_title"`
	Description string `yaml:"app_description"`
	Version     string `yaml:"app_version"`
	Headline    string `yaml:"app_headline"`
	Publisher   string `yaml:"app_publisher"`
	SourceLink  string `yaml:"source_link"`
	BaseURL     string `yaml:"docs_base_url"`
	License     string `yaml:"app_license"`
}

// Validate fails with a configuration error naming every missing field.
func (m Metadata) Validate(appID string) error {
	var missing []string
	for _, f := range []struct {
		key, value string
	}{
		{"app_title", m.Title},
		{"app_description", m.Description},
		{"app_version", m.Version},
		{"app_headline", m.Headline},
		{"app_publisher", m.Publisher},
		{"source_link", m.SourceLink},
		{"docs_base_url", m.BaseURL},
		{"app_license", m.License},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return aerrors.MissingMetadata(appID, missing)
	}
	return nil
}

// AppContext is the immutable app-wide part of every page context.
type AppContext struct {
	Name            string
	Title           string
	Description     string
	DescriptionHTML template.HTML
	Version         string
	Headline        string
	Publisher       string
	SourceLink      string
	BaseURL         string
	License         string
	DocsVersion     string

	extras map[string]string
}

// Option customizes an AppContext at construction.
type Option func(*AppContext)

// WithDocsVersion records the docs version label being built.
func WithDocsVersion(v string) Option {
	return func(c *AppContext) { c.DocsVersion = v }
}

// WithExtra adds a free-form string value, e.g. the source commit.
func WithExtra(key, value string) Option {
	return func(c *AppContext) {
		if c.extras == nil {
			c.extras = make(map[string]string)
		}
		c.extras[key] = value
	}
}

// New validates meta and builds the AppContext for appID.
func New(appID string, meta Metadata, opts ...Option) (AppContext, error) {
	if strings.TrimSpace(appID) == "" {
		return AppContext{}, aerrors.ConfigRequired("app")
	}
	if err := meta.Validate(appID); err != nil {
		return AppContext{}, err
	}
	desc, err := markdown.ToHTML([]byte(meta.Description))
	if err != nil {
		return AppContext{}, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "render app description")
	}
	c := AppContext{
		Name:            appID,
		Title:           meta.Title,
		Description:     meta.Description,
		DescriptionHTML: template.HTML(desc), // #nosec G203 -- description comes from the app's own metadata
		Version:         meta.Version,
		Headline:        meta.Headline,
		Publisher:       meta.Publisher,
		SourceLink:      meta.SourceLink,
		BaseURL:         strings.TrimRight(meta.BaseURL, "/"),
		License:         meta.License,
	}
	for _, o := range opts {
		o(&c)
	}
	return c, nil
}

// Load fetches metadata from p and builds the AppContext.
func Load(p Provider, appID string, opts ...Option) (AppContext, error) {
	meta, err := p.AppMetadata(appID)
	if err != nil {
		return AppContext{}, err
	}
	return New(appID, meta, opts...)
}

// With returns a copy of c with opts applied. c itself is unchanged.
func (c AppContext) With(opts ...Option) AppContext {
	c.extras = maps.Clone(c.extras)
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Extra returns a free-form value and whether it was set.
func (c AppContext) Extra(key string) (string, bool) {
	v, ok := c.extras[key]
	return v, ok
}

// Extras returns a copy of all free-form values.
func (c AppContext) Extras() map[string]string {
	if c.extras == nil {
		return map[string]string{}
	}
	return maps.Clone(c.extras)
}
