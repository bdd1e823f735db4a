package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return aerrors.New(aerrors.CategoryConfig, aerrors.SeverityFatal,
			"configuration file already exists (use --force to overwrite)").WithContext("path", configPath)
	}

	example := Config{
		AppsDir:        DefaultAppsDir,
		DefaultVersion: DefaultVersion,
		Apps: map[string]AppConfig{
			"billing": {DocsRoot: "./site/billing"},
		},
		Publish: PublishConfig{PagesDB: "./pages.db"},
		Watch:   WatchConfig{Debounce: DefaultDebounce.String()},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// #nosec G306 -- the config file holds no secrets
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return aerrors.FileSystem("write", configPath, err)
	}
	return nil
}
