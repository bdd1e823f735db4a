package docsync

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/autodoc/internal/pathmap"
)

const defaultInitStem = "__init__"

// ModuleName returns the dotted import name of a code file below appRoot,
// prefixed with app. A package init file names its package:
//
//	/app/pkg/sub/mod.py  -> app.pkg.sub.mod
//	/app/pkg/__init__.py -> app.pkg
//	/app/__init__.py     -> app
func ModuleName(app, appRoot, file string) (string, error) {
	return moduleName(app, appRoot, file, defaultInitStem)
}

func moduleName(app, appRoot, file, initStem string) (string, error) {
	rel, err := pathmap.Rel(file, appRoot)
	if err != nil {
		return "", err
	}
	parts := pathmap.Segments(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if n := len(parts); n > 0 && parts[n-1] == initStem {
		parts = parts[:n-1]
	}
	return strings.Join(append([]string{app}, parts...), "."), nil
}
