package docsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/autodoc/internal/appmeta"
	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/manifest"
	"git.home.luguber.info/inful/autodoc/internal/metrics"
	"git.home.luguber.info/inful/autodoc/internal/render"
)

type fixture struct {
	root    string
	source  string
	docs    string
	output  string
	license string
}

func writeFiles(t *testing.T, base string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// newFixture lays out a small app with models, code packages and the usual
// excluded folders. The docs tree sits beside the source.
func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		source:  filepath.Join(root, "app"),
		docs:    filepath.Join(root, "docs"),
		license: filepath.Join(root, "license.txt"),
	}
	f.output = filepath.Join(f.docs, "v1")
	writeFiles(t, f.source, map[string]string{
		"__init__.py":                          "",
		"hooks.py":                             "",
		"billing/__init__.py":                  "",
		"billing/api.py":                       "",
		"billing/doctype/__init__.py":          "",
		"billing/doctype/invoice/invoice.json": `{"name": "Invoice"}`,
		"billing/doctype/invoice/invoice.py":   "",
		"billing/doctype/boilerplate/x.json":   `{"name": "Boilerplate"}`,
		"billing/doctype/payment/payment.py":   "",
		"billing/tests/__init__.py":            "",
		"billing/tests/test_invoice.py":        "",
		"utils/helpers/__init__.py":            "",
		"utils/helpers/fmt.py":                 "",
		"__pycache__/hooks.cpython-312.pyc":    "",
	})
	writeFiles(t, root, map[string]string{"license.txt": "# MIT\n\nPermission is granted."})
	return f
}

func testApp(t *testing.T) appmeta.AppContext {
	t.Helper()
	app, err := appmeta.New("app", appmeta.Metadata{
		Title:       "App",
		Description: "An app.",
		Version:     "1.0.0",
		Headline:    "Does things",
		Publisher:   "Acme",
		SourceLink:  "https://example.com/app",
		BaseURL:     "https://docs.example.com",
		License:     "MIT",
	}, appmeta.WithDocsVersion("v1"))
	require.NoError(t, err)
	return app
}

func newSynchronizer(t *testing.T, license string, opts ...Option) *Synchronizer {
	t.Helper()
	r, err := render.NewTemplateRenderer("")
	require.NoError(t, err)
	return New(r, license, opts...)
}

func readManifest(t *testing.T, folder string) []string {
	t.Helper()
	names, err := manifest.Read(folder)
	require.NoError(t, err)
	return names
}

func TestSynchronize_Tree(t *testing.T) {
	f := newFixture(t)
	s := newSynchronizer(t, f.license)

	report, err := s.Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)

	for _, rel := range []string{
		"index.html",
		"license.html",
		"v1/index.html",
		"v1/models/index.html",
		"v1/models/billing/index.html",
		"v1/models/billing/invoice.html",
		"v1/api/index.html",
		"v1/api/app.html",
		"v1/api/app.hooks.html",
		"v1/api/billing/app.billing.html",
		"v1/api/billing/app.billing.api.html",
		"v1/api/utils/index.html",
		"v1/api/utils/helpers/index.html",
		"v1/api/utils/helpers/app.utils.helpers.html",
		"v1/api/utils/helpers/app.utils.helpers.fmt.html",
	} {
		assert.FileExists(t, filepath.Join(f.docs, filepath.FromSlash(rel)))
	}
	for _, rel := range []string{
		"v1/models/billing/boilerplate.html",
		"v1/models/billing/payment.html",
		"v1/models/billing/doctype.html",
		"v1/api/billing/doctype",
		"v1/api/billing/tests",
		"v1/api/__pycache__",
	} {
		assert.NoFileExists(t, filepath.Join(f.docs, filepath.FromSlash(rel)))
		assert.NoDirExists(t, filepath.Join(f.docs, filepath.FromSlash(rel)))
	}

	assert.Equal(t, []string{"billing"}, readManifest(t, filepath.Join(f.output, "models")))
	assert.Equal(t, []string{"invoice"}, readManifest(t, filepath.Join(f.output, "models", "billing")))
	assert.Equal(t, []string{"app", "app.hooks", "billing", "utils"}, readManifest(t, filepath.Join(f.output, "api")))
	assert.Equal(t, []string{"helpers"}, readManifest(t, filepath.Join(f.output, "api", "utils")))
	assert.Equal(t, []string{"api", "models"}, readManifest(t, f.output))
	assert.Equal(t, []string{"license", "v1"}, readManifest(t, f.docs))

	page, err := os.ReadFile(filepath.Join(f.output, "models", "billing", "invoice.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Invoice</h1>")

	lic, err := os.ReadFile(filepath.Join(f.docs, "license.html"))
	require.NoError(t, err)
	assert.Contains(t, string(lic), "Permission is granted.")

	assert.Equal(t, []string{filepath.Join(f.source, "billing", "doctype", "payment")}, report.MissingDefinitions)
	assert.Equal(t, "v1", report.Version)
	assert.Equal(t, "app", report.App)
	assert.NotEmpty(t, report.BuildID)
	assert.Positive(t, report.Written)
	assert.Zero(t, report.Skipped)
	assert.Positive(t, report.ManifestsUpdated)
}

func TestSynchronize_Idempotent(t *testing.T) {
	f := newFixture(t)
	s := newSynchronizer(t, f.license)
	app := testApp(t)

	first, err := s.Synchronize(context.Background(), f.source, f.output, app)
	require.NoError(t, err)
	snapshot := readTree(t, f.docs)

	second, err := s.Synchronize(context.Background(), f.source, f.output, app)
	require.NoError(t, err)
	assert.Equal(t, snapshot, readTree(t, f.docs))
	assert.Equal(t, first.Written, second.Written)
	assert.NotEqual(t, first.BuildID, second.BuildID)
}

func TestSynchronize_CleanSlateKeepsSiblings(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.docs, map[string]string{
		"v0/index.html":  "old version",
		"v1/stale.html":  "stale",
		"index.txt":      "v1\nv0\nlicense\nchangelog",
		"changelog.html": "notes",
	})

	_, err := newSynchronizer(t, f.license).Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(f.output, "stale.html"))
	assert.FileExists(t, filepath.Join(f.docs, "v0", "index.html"))
	// Curated order survives while it still lists every entry.
	assert.Equal(t, []string{"v1", "v0", "license", "changelog"}, readManifest(t, f.docs))
}

func TestSynchronize_DocsInsideSource(t *testing.T) {
	f := newFixture(t)
	f.docs = filepath.Join(f.source, "docs")
	f.output = filepath.Join(f.docs, "current")

	s := newSynchronizer(t, f.license)
	_, err := s.Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)
	// Running twice must not mirror the generated tree into itself.
	_, err = s.Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(f.output, "api", "docs"))
	assert.Equal(t, []string{"app", "app.hooks", "billing", "utils"}, readManifest(t, filepath.Join(f.output, "api")))
}

func TestSynchronize_DocsRootAboveSource(t *testing.T) {
	f := newFixture(t)
	f.docs = f.root
	f.output = filepath.Join(f.root, "v1")

	report, err := newSynchronizer(t, f.license).Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"billing"}, readManifest(t, filepath.Join(f.output, "models")))
	assert.Equal(t, []string{"app", "app.hooks", "billing", "utils"}, readManifest(t, filepath.Join(f.output, "api")))
	assert.FileExists(t, filepath.Join(f.output, "models", "billing", "invoice.html"))
	assert.Contains(t, report.MissingDefinitions, filepath.Join(f.source, "billing", "doctype", "payment"))
}

func TestSynchronize_DuplicateModelKeepsFirstPage(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.source, map[string]string{
		"zz/billing/doctype/invoice/invoice.py": "",
	})

	report, err := newSynchronizer(t, f.license).Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(f.source, "billing", "doctype", "payment")}, report.MissingDefinitions)
	data, err := os.ReadFile(filepath.Join(f.output, "models", "billing", "invoice.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Invoice")
}

func TestSynchronize_MarkerAtRoot(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "shop")
	writeFiles(t, source, map[string]string{
		"doctype/order/order.json": `{"name": "Sales Order"}`,
	})
	writeFiles(t, root, map[string]string{"license.txt": "MIT"})

	_, err := newSynchronizer(t, filepath.Join(root, "license.txt")).
		Synchronize(context.Background(), source, filepath.Join(root, "docs", "v1"), testApp(t))
	require.NoError(t, err)

	page := filepath.Join(root, "docs", "v1", "models", "shop", "order.html")
	assert.FileExists(t, page)
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sales Order")
}

func TestSynchronize_LicenseMissing(t *testing.T) {
	f := newFixture(t)
	s := newSynchronizer(t, filepath.Join(f.root, "nope.txt"))

	_, err := s.Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
	assert.NoFileExists(t, filepath.Join(f.docs, "license.html"))
}

func TestSynchronize_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := newSynchronizer(t, "").Synchronize(context.Background(), f.source, f.output, testApp(t))
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))

	s := newSynchronizer(t, f.license)
	_, err = s.Synchronize(context.Background(), f.source, f.root, testApp(t))
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryValidation))
	assert.DirExists(t, f.source, "source must survive a rejected output root")

	_, err = s.Synchronize(context.Background(), filepath.Join(f.root, "missing"), f.output, testApp(t))
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryFileSystem))
}

func TestSynchronize_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSynchronizer(t, f.license).Synchronize(ctx, f.source, f.output, testApp(t))
	require.ErrorIs(t, err, context.Canceled)
}

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes  []metrics.BuildOutcomeLabel
	manifests int
}

func (o *outcomeRecorder) IncBuildOutcome(l metrics.BuildOutcomeLabel) { o.outcomes = append(o.outcomes, l) }
func (o *outcomeRecorder) IncManifest(bool)                          { o.manifests++ }

func TestSynchronize_Metrics(t *testing.T) {
	f := newFixture(t)
	rec := &outcomeRecorder{}
	s := newSynchronizer(t, f.license, WithRecorder(rec))
	s.now = func() time.Time { return time.Unix(0, 0) }

	report, err := s.Synchronize(context.Background(), f.source, f.output, testApp(t))
	require.NoError(t, err)
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeWarning}, rec.outcomes)
	assert.Positive(t, rec.manifests)
	assert.Zero(t, report.Duration)
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[rel] = string(data)
		return nil
	}))
	return out
}
