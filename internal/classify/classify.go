// Package classify labels source directories for the synchronizer.
//
// A directory is described by independent facets rather than a single label:
// the same directory can be both a code package (module API pages) and the
// home of a models folder when it owns a model-definition marker directory.
package classify

import (
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/autodoc/internal/pathmap"
)

// Label is the summary classification of a directory.
type Label string

const (
	LabelExcluded        Label = "excluded"
	LabelModelDefinition Label = "model-definition-folder"
	LabelCodePackage     Label = "code-package"
	LabelPlainFolder     Label = "plain-folder"
)

// Facets is the result of classifying one directory.
type Facets struct {
	// Prune stops the walk: no artifacts, no descent.
	Prune bool
	// PackageHome is set when the directory owns a marker subdirectory and
	// is itself outside any marker subtree. ModuleName names the models folder.
	PackageHome bool
	// InModelTree is set for every directory at or below a marker directory.
	InModelTree bool
	// Container is set for a marker directory or a reserved name directly below one.
	Container bool
	// ModelName is the folder name of a model definition directly below a marker.
	ModelName string
	// ModuleName is the owning module for PackageHome and ModelName.
	ModuleName string
	// CodePackage is set when the directory holds the init marker and no
	// excluded segment appears in its path.
	CodePackage bool
}

// Label summarizes the facets. Model facets take precedence over package facets.
func (f Facets) Label() Label {
	switch {
	case f.Prune, f.Container:
		return LabelExcluded
	case f.InModelTree:
		return LabelModelDefinition
	case f.PackageHome, f.CodePackage:
		return LabelCodePackage
	default:
		return LabelPlainFolder
	}
}

// Classifier evaluates Rules for directories under a source root.
type Classifier struct {
	root       string
	rules      Rules
	pruneRoots []string
}

// New creates a classifier. Directories at or below any of pruneRoots (for
// example a docs output tree kept inside the source tree) are pruned. A prune
// root that is the source root or one of its ancestors is ignored.
func New(sourceRoot string, rules Rules, pruneRoots ...string) *Classifier {
	root := filepath.Clean(sourceRoot)
	roots := make([]string, 0, len(pruneRoots))
	for _, r := range pruneRoots {
		if r == "" {
			continue
		}
		r = filepath.Clean(r)
		if pathmap.Within(root, r) {
			continue
		}
		roots = append(roots, r)
	}
	return &Classifier{
		root:       root,
		rules:      rules.WithDefaults(),
		pruneRoots: roots,
	}
}

// Classify inspects a directory given its immediate children. childNames
// holds file names, childDirNames holds subdirectory names.
func (c *Classifier) Classify(dir string, childNames, childDirNames []string) Facets {
	var f Facets

	rel, err := pathmap.Rel(dir, c.root)
	if err != nil || c.pruned(dir, rel) {
		f.Prune = true
		return f
	}

	segments := pathmap.Segments(rel)
	base := filepath.Base(filepath.Clean(dir))
	marker := c.rules.ModelMarker

	f.InModelTree = slices.Contains(segments, marker)

	if f.InModelTree {
		n := len(segments)
		switch {
		case segments[n-1] == marker:
			f.Container = true
		case n >= 2 && segments[n-2] == marker:
			if slices.Contains(c.rules.ReservedModelNames, base) {
				f.Container = true
			} else {
				f.ModelName = base
				f.ModuleName = c.moduleAt(segments, n-2)
			}
		}
		return f
	}

	if slices.Contains(childDirNames, marker) {
		f.PackageHome = true
		f.ModuleName = c.moduleAt(segments, len(segments))
	}

	if slices.Contains(childNames, c.rules.InitMarker) && !c.hasExcludedSegment(segments) {
		f.CodePackage = true
	}

	return f
}

// moduleAt returns the name of the directory that owns the marker at index
// markerIdx of segments; a marker at the source root belongs to the root.
func (c *Classifier) moduleAt(segments []string, markerIdx int) string {
	if markerIdx == 0 {
		return filepath.Base(c.root)
	}
	return segments[markerIdx-1]
}

func (c *Classifier) pruned(dir, rel string) bool {
	for _, r := range c.pruneRoots {
		if pathmap.Within(dir, r) {
			return true
		}
	}
	if rel == "." {
		return false
	}
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return slices.Contains(c.rules.PrunedNames, base)
}

func (c *Classifier) hasExcludedSegment(segments []string) bool {
	for _, s := range segments {
		if s == c.rules.ModelMarker || slices.Contains(c.rules.ExcludedSegments, s) {
			return true
		}
	}
	return false
}

// IsCodeFile reports whether name is a code module file.
func (c *Classifier) IsCodeFile(name string) bool {
	return strings.HasSuffix(name, c.rules.CodeExtension) && !strings.HasPrefix(name, ".")
}
