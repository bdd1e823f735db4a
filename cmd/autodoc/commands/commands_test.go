package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
)

const hooks = `app_title: Billing
app_description: Invoices and *payments*.
app_version: 2.1.0
app_headline: Get paid
app_publisher: Acme
source_link: https://git.example.com/billing
docs_base_url: https://docs.example.com/billing
app_license: MIT
`

func writeFiles(t *testing.T, base string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// newProject lays out apps/billing with the default layout and returns the
// config path and the app's source root.
func newProject(t *testing.T, extraConfig string) (string, string) {
	t.Helper()
	root := t.TempDir()
	apps := filepath.Join(root, "apps")
	writeFiles(t, apps, map[string]string{
		"billing/license.txt":                                   "# MIT\n",
		"billing/billing/__init__.py":                           "",
		"billing/billing/hooks.yaml":                            hooks,
		"billing/billing/accounts/__init__.py":                  "",
		"billing/billing/accounts/ledger.py":                    "",
		"billing/billing/accounts/doctype/__init__.py":          "",
		"billing/billing/accounts/doctype/invoice/invoice.json": `{"name": "Sales Invoice"}`,
	})
	cfgPath := filepath.Join(root, "autodoc.yaml")
	writeFiles(t, root, map[string]string{
		"autodoc.yaml": "apps_dir: " + apps + "\n" + extraConfig,
	})
	return cfgPath, filepath.Join(apps, "billing", "billing")
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cli := &CLI{}
	g := &Global{}
	parser, err := kong.New(cli,
		kong.Name("autodoc"),
		kong.Vars{"version": "test"},
		kong.Bind(g, cli),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx.Run()
}

func TestBuildSyncPublish(t *testing.T) {
	cfgPath, source := newProject(t, "")
	docs := filepath.Join(source, "docs")
	db := filepath.Join(t.TempDir(), "pages.db")
	site := filepath.Join(t.TempDir(), "site")

	require.NoError(t, run(t, "-c", cfgPath, "build", "billing", "--docs-version", "v2"))

	for _, rel := range []string{
		"index.html",
		"v2/index.html",
		"license.html",
		"v2/models/accounts/invoice.html",
		"v2/api/billing.html",
		"v2/api/accounts/billing.accounts.ledger.html",
	} {
		assert.FileExists(t, filepath.Join(docs, filepath.FromSlash(rel)))
	}

	require.NoError(t, run(t, "-c", cfgPath, "sync-pages", "billing", "--pages-db", db))
	require.NoError(t, run(t, "-c", cfgPath, "publish", "billing", site, "--local", "--pages-db", db, "--docs-version", "v2"))

	home, err := os.ReadFile(filepath.Join(site, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), `href="/v2"`)
	assert.NotContains(t, string(home), "docs.example.com")
	assert.FileExists(t, filepath.Join(site, "v2", "index.html"))
	assert.DirExists(t, filepath.Join(site, "assets", "img"))
}

func TestBuildIsRepeatable(t *testing.T) {
	cfgPath, source := newProject(t, "default_version: stable\n")
	require.NoError(t, run(t, "-c", cfgPath, "build", "billing"))
	require.NoError(t, run(t, "-c", cfgPath, "build", "billing"))
	assert.FileExists(t, filepath.Join(source, "docs", "stable", "index.html"))
}

func TestBuildWritesMetricsFile(t *testing.T) {
	cfgPath, _ := newProject(t, "")
	out := filepath.Join(t.TempDir(), "autodoc.prom")

	require.NoError(t, run(t, "-c", cfgPath, "build", "billing", "--metrics-file", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autodoc_")
}

func TestBuildErrors(t *testing.T) {
	adapter := aerrors.NewCLIErrorAdapter(false, nil)

	t.Run("missing metadata", func(t *testing.T) {
		cfgPath, source := newProject(t, "")
		writeFiles(t, source, map[string]string{"hooks.yaml": "app_title: Billing\n"})
		err := run(t, "-c", cfgPath, "build", "billing")
		require.Error(t, err)
		assert.Equal(t, 7, adapter.ExitCodeFor(err))
	})

	t.Run("invalid version", func(t *testing.T) {
		cfgPath, _ := newProject(t, "")
		err := run(t, "-c", cfgPath, "build", "billing", "--docs-version", "../up")
		require.Error(t, err)
		assert.Equal(t, 2, adapter.ExitCodeFor(err))
	})

	t.Run("explicit config missing", func(t *testing.T) {
		err := run(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "build", "billing")
		require.Error(t, err)
		assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
	})
}

func TestSyncPagesRequiresDatabase(t *testing.T) {
	cfgPath, _ := newProject(t, "")
	err := run(t, "-c", cfgPath, "sync-pages", "billing")
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
}

func TestInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "autodoc.yaml")

	require.NoError(t, run(t, "-c", cfgPath, "init"))
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "apps_dir:"))

	require.Error(t, run(t, "-c", cfgPath, "init"))
	require.NoError(t, run(t, "-c", cfgPath, "init", "--force"))
}
