// Package pathmap mirrors paths from a source tree into an output tree.
package pathmap

import (
	"path/filepath"
	"strings"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
)

// Rel returns sourcePath relative to sourceRoot. Both are cleaned first; the
// containment check is done per path segment so "/app2" is not under "/app".
func Rel(sourcePath, sourceRoot string) (string, error) {
	root := filepath.Clean(sourceRoot)
	path := filepath.Clean(sourcePath)

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", aerrors.PathOutsideRoot(sourcePath, sourceRoot)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", aerrors.PathOutsideRoot(sourcePath, sourceRoot)
	}
	return rel, nil
}

// Map replaces the sourceRoot prefix of sourcePath with outputRoot.
func Map(sourcePath, sourceRoot, outputRoot string) (string, error) {
	rel, err := Rel(sourcePath, sourceRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputRoot, rel), nil
}

// Within reports whether path equals root or sits below it.
func Within(path, root string) bool {
	_, err := Rel(path, root)
	return err == nil
}

// Segments splits a relative path into its components. "." yields none.
func Segments(rel string) []string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}
