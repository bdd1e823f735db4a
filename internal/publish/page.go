package publish

import (
	"context"
	"path"
)

// Page identifies one published page by its route.
type Page struct {
	// ParentRoute is the slash-separated route of the containing folder, empty at the root.
	ParentRoute string
	PageName    string
}

// Route returns the page's full route.
func (p Page) Route() string {
	if p.ParentRoute == "" {
		return p.PageName
	}
	return path.Join(p.ParentRoute, p.PageName)
}

// PageLister enumerates the pages to publish, in navigation order.
type PageLister interface {
	ListPages(ctx context.Context) ([]Page, error)
}
