// Package manifest maintains the per-folder navigation index (index.txt).
//
// A manifest lists the entries a folder exposes: its pages (without the
// .html extension, excluding the folder's own index page) and its
// subfolders. Manifests may be edited by hand; Reconcile leaves a manifest
// untouched as long as it already lists every derived entry.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

const (
	// FileName is the manifest file inside every indexed folder.
	FileName = "index.txt"
	// IndexPage is the folder's own landing page, never listed in its manifest.
	IndexPage = "index.html"

	pageExt = ".html"
)

// Path returns the manifest location for folder.
func Path(folder string) string {
	return filepath.Join(folder, FileName)
}

// Derive computes the names a folder should expose from its current contents.
// Names are returned sorted.
func Derive(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		isDir := e.IsDir()
		if !isDir && e.Type()&fs.ModeSymlink != 0 {
			if fi, err := os.Stat(filepath.Join(folder, name)); err == nil {
				isDir = fi.IsDir()
			}
		}
		switch {
		case isDir:
			names = append(names, name)
		case strings.HasSuffix(name, pageExt) && name != IndexPage:
			names = append(names, strings.TrimSuffix(name, pageExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the non-empty lines of the folder's manifest in stored order.
// A missing manifest reads as empty.
func Read(folder string) ([]string, error) {
	data, err := os.ReadFile(Path(folder))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse splits manifest content into its non-empty entries.
func Parse(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Format renders names as manifest content: newline separated, no trailing newline.
func Format(names []string) string {
	return strings.Join(names, "\n")
}

// IsSubset reports whether every name in derived appears in stored.
func IsSubset(derived, stored []string) bool {
	for _, d := range derived {
		if !slices.Contains(stored, d) {
			return false
		}
	}
	return true
}

// Reconcile brings the folder's manifest in line with its contents.
//
// When every derived name is already listed the manifest is left alone,
// keeping any curated order or extra entries. Otherwise the manifest is
// replaced by the derived names; entries that exist only in the old manifest
// are dropped.
func Reconcile(folder string) (bool, error) {
	derived, err := Derive(folder)
	if err != nil {
		return false, err
	}
	stored, err := Read(folder)
	if err != nil {
		return false, err
	}
	if IsSubset(derived, stored) {
		return false, nil
	}
	// #nosec G306 -- manifests are public site content
	if err := os.WriteFile(Path(folder), []byte(Format(derived)), 0o644); err != nil {
		return false, fmt.Errorf("write manifest: %w", err)
	}
	return true, nil
}
