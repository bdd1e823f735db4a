package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<html></html>")
	writeFile(t, filepath.Join(dir, "invoice.html"), "invoice")
	writeFile(t, filepath.Join(dir, "app.billing.utils.html"), "utils")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "payments"), 0o750))
	return dir
}

func TestDerive(t *testing.T) {
	dir := newFolder(t)
	names, err := Derive(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.billing.utils", "invoice", "payments"}, names)
}

func TestRead_Missing(t *testing.T) {
	names, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestParse(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Parse("a\r\n\n  b  \n"))
	assert.Empty(t, Parse(""))
}

func TestReconcile_WritesWhenMissing(t *testing.T) {
	dir := newFolder(t)

	changed, err := Reconcile(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "app.billing.utils\ninvoice\npayments", string(data))
}

func TestReconcile_SubsetIsNoOp(t *testing.T) {
	dir := newFolder(t)
	curated := "payments\ninvoice\nhand-written-page\napp.billing.utils\n"
	writeFile(t, Path(dir), curated)
	before, err := os.Stat(Path(dir))
	require.NoError(t, err)

	changed, err := Reconcile(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, curated, string(data), "curated order and extra entries survive")
	after, err := os.Stat(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestReconcile_MismatchReplaces(t *testing.T) {
	dir := newFolder(t)
	writeFile(t, Path(dir), "invoice\nhand-written-page")

	changed, err := Reconcile(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.billing.utils", "invoice", "payments"}, stored,
		"a missing entry rewrites the manifest as exactly the derived names")
}

func TestReconcile_Idempotent(t *testing.T) {
	dir := newFolder(t)
	_, err := Reconcile(dir)
	require.NoError(t, err)
	changed, err := Reconcile(dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcile_MissingFolder(t *testing.T) {
	_, err := Reconcile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
