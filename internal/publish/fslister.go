package publish

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/autodoc/internal/manifest"
)

// rootPage is the docs home page.
const rootPage = "index"

// FSLister lists the pages of a generated docs tree in manifest order.
// Entries present on disk but missing from a manifest follow in name order;
// manifest entries with nothing on disk are ignored.
type FSLister struct {
	root string
}

// NewFSLister returns a lister over the docs tree at root.
func NewFSLister(root string) *FSLister {
	return &FSLister{root: filepath.Clean(root)}
}

// ListPages implements PageLister.
func (l *FSLister) ListPages(ctx context.Context) ([]Page, error) {
	var pages []Page
	if isFile(filepath.Join(l.root, manifest.IndexPage)) {
		pages = append(pages, Page{PageName: rootPage})
	}
	err := l.walk(ctx, l.root, "", &pages)
	return pages, err
}

func (l *FSLister) walk(ctx context.Context, dir, route string, pages *[]Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	names, err := orderedNames(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		full := filepath.Join(dir, name)
		switch {
		case isFile(full + ".html"):
			*pages = append(*pages, Page{ParentRoute: route, PageName: name})
		case isFile(filepath.Join(full, manifest.IndexPage)):
			*pages = append(*pages, Page{ParentRoute: route, PageName: name})
			if err := l.walk(ctx, full, path.Join(route, name), pages); err != nil {
				return err
			}
		}
	}
	return nil
}

// orderedNames returns the manifest entries of dir followed by derived
// entries the manifest does not list.
func orderedNames(dir string) ([]string, error) {
	stored, err := manifest.Read(dir)
	if err != nil {
		return nil, err
	}
	derived, err := manifest.Derive(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(stored)+len(derived))
	for _, n := range stored {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	for _, n := range derived {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
