// Package config loads the autodoc configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/autodoc/internal/classify"
	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/pathmap"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "autodoc.yaml"

// Defaults.
const (
	DefaultAppsDir        = "./apps"
	DefaultVersion        = "current"
	DefaultDebounce       = 300 * time.Millisecond
	defaultDocsDir        = "docs"
	defaultLicenseFile    = "license.txt"
	defaultMetadataFile   = "hooks.yaml"
	defaultPublishFavicon = "/assets/img/favicon.ico"
)

// Config represents the application configuration.
type Config struct {
	// AppsDir holds one folder per app laid out as <apps_dir>/<id>/<id>.
	AppsDir        string               `yaml:"apps_dir"`
	Apps           map[string]AppConfig `yaml:"apps,omitempty"`
	DefaultVersion string               `yaml:"default_version"`
	TemplatesDir   string               `yaml:"templates_dir,omitempty"`
	Layout         classify.Rules       `yaml:"layout,omitempty"`
	Publish        PublishConfig        `yaml:"publish,omitempty"`
	Watch          WatchConfig          `yaml:"watch,omitempty"`
	LogLevel       string               `yaml:"log_level,omitempty"`
}

// AppConfig overrides the derived locations of one app. Empty fields use defaults.
type AppConfig struct {
	SourceRoot   string `yaml:"source_root,omitempty"`
	DocsRoot     string `yaml:"docs_root,omitempty"`
	LicenseFile  string `yaml:"license_file,omitempty"`
	MetadataFile string `yaml:"metadata_file,omitempty"`
}

// PublishConfig configures the publish command.
type PublishConfig struct {
	PagesDB string `yaml:"pages_db,omitempty"`
	Favicon string `yaml:"favicon,omitempty"`
}

// WatchConfig configures the watch command. Durations use time.ParseDuration syntax.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Interval string `yaml:"interval,omitempty"`
}

// DebounceDuration returns the parsed debounce delay.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	return parseDuration("watch.debounce", w.Debounce, DefaultDebounce)
}

// IntervalDuration returns the periodic rebuild interval; zero disables it.
func (w WatchConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration("watch.interval", w.Interval, 0)
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, aerrors.ValidationFailed(field, fmt.Sprintf("invalid duration %q", raw))
	}
	return d, nil
}

// AppPaths are the resolved locations for one app.
type AppPaths struct {
	ID           string
	SourceRoot   string
	DocsRoot     string
	LicenseFile  string
	MetadataFile string
}

// OutputRoot returns the version directory below the docs root.
func (p AppPaths) OutputRoot(version string) string {
	return filepath.Join(p.DocsRoot, version)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads, expands and validates the configuration at configPath.
// .env and .env.local in the working directory are loaded first.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, aerrors.ConfigNotFound(configPath)
		}
		return nil, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "failed to unmarshal config").
			WithContext("path", configPath)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but returns Default when configPath does not exist.
func LoadOptional(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		loadEnvFiles()
		return Default(), nil
	}
	return Load(configPath)
}

func (c *Config) applyDefaults() {
	if c.AppsDir == "" {
		c.AppsDir = DefaultAppsDir
	}
	if c.DefaultVersion == "" {
		c.DefaultVersion = DefaultVersion
	}
	if c.Publish.Favicon == "" {
		c.Publish.Favicon = defaultPublishFavicon
	}
	c.Layout = c.Layout.WithDefaults()
}

// Validate checks the fields that do not depend on a particular app.
func (c *Config) Validate() error {
	if err := ValidateVersion(c.DefaultVersion); err != nil {
		return err
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	if _, err := c.Watch.IntervalDuration(); err != nil {
		return err
	}
	for id := range c.Apps {
		if err := validateAppID(id); err != nil {
			return err
		}
	}
	return nil
}

// App resolves the locations of app id:
//
//	source   <apps_dir>/<id>/<id>
//	docs     <source>/docs
//	license  <source>/../license.txt
//	metadata <source>/hooks.yaml
func (c *Config) App(id string) (AppPaths, error) {
	if err := validateAppID(id); err != nil {
		return AppPaths{}, err
	}
	override := c.Apps[id]

	p := AppPaths{ID: id}
	p.SourceRoot = orDefault(override.SourceRoot, filepath.Join(c.AppsDir, id, id))
	p.DocsRoot = orDefault(override.DocsRoot, filepath.Join(p.SourceRoot, defaultDocsDir))
	p.LicenseFile = orDefault(override.LicenseFile, filepath.Join(filepath.Dir(p.SourceRoot), defaultLicenseFile))
	p.MetadataFile = orDefault(override.MetadataFile, filepath.Join(p.SourceRoot, defaultMetadataFile))

	if pathmap.Within(p.SourceRoot, p.DocsRoot) {
		return AppPaths{}, aerrors.ValidationFailed("docs_root", "must not contain the source root")
	}
	return p, nil
}

// ValidateVersion checks a docs version label; it becomes a directory name.
func ValidateVersion(v string) error {
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return aerrors.ValidationFailed("version", fmt.Sprintf("invalid docs version %q", v))
	}
	return nil
}

func validateAppID(id string) error {
	if strings.TrimSpace(id) == "" {
		return aerrors.ValidationFailed("app", "app id is required")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return aerrors.ValidationFailed("app", fmt.Sprintf("invalid app id %q", id))
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return filepath.Clean(def)
	}
	return filepath.Clean(v)
}
