package appmeta

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
)

// YAMLProvider reads metadata from a hooks file. The file is either a single
// record or a map of app id to record.
type YAMLProvider struct {
	path string
}

// NewYAMLProvider returns a provider backed by the hooks file at path.
func NewYAMLProvider(path string) *YAMLProvider {
	return &YAMLProvider{path: path}
}

// AppMetadata implements Provider.
func (p *YAMLProvider) AppMetadata(appID string) (Metadata, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, aerrors.ConfigNotFound(p.path)
		}
		return Metadata{}, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "read metadata file").
			WithContext("path", p.path)
	}

	var byApp map[string]yaml.Node
	if err := yaml.Unmarshal(data, &byApp); err != nil {
		return Metadata{}, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "parse metadata file").
			WithContext("path", p.path)
	}

	var meta Metadata
	if node, ok := byApp[appID]; ok && node.Kind == yaml.MappingNode {
		err = node.Decode(&meta)
	} else {
		err = yaml.Unmarshal(data, &meta)
	}
	if err != nil {
		return Metadata{}, aerrors.Wrap(err, aerrors.CategoryConfig, aerrors.SeverityFatal, "decode metadata").
			WithContext("path", p.path).
			WithContext("app", appID)
	}
	return meta, nil
}

// StaticProvider serves metadata from memory.
type StaticProvider map[string]Metadata

// AppMetadata implements Provider.
func (p StaticProvider) AppMetadata(appID string) (Metadata, error) {
	meta, ok := p[appID]
	if !ok {
		return Metadata{}, aerrors.ConfigRequired(fmt.Sprintf("metadata for app %q", appID))
	}
	return meta, nil
}
