package appmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
)

func sampleMetadata() Metadata {
	return Metadata{
		Title:       "Billing",
		Description: "Invoices and **payments**",
		Version:     "1.2.0",
		Headline:    "Get paid",
		Publisher:   "Example Ltd",
		SourceLink:  "https://git.example.com/billing",
		BaseURL:     "https://docs.example.com/billing/",
		License:     "MIT",
	}
}

func TestNew(t *testing.T) {
	c, err := New("billing", sampleMetadata(), WithDocsVersion("current"), WithExtra("source_commit", "abc123"))
	require.NoError(t, err)

	assert.Equal(t, "billing", c.Name)
	assert.Equal(t, "Billing", c.Title)
	assert.Equal(t, "current", c.DocsVersion)
	assert.Equal(t, "https://docs.example.com/billing", c.BaseURL)
	assert.Contains(t, string(c.DescriptionHTML), "<strong>payments</strong>")

	v, ok := c.Extra("source_commit")
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestNew_MissingFields(t *testing.T) {
	meta := sampleMetadata()
	meta.Title = ""
	meta.License = "  "

	_, err := New("billing", meta)
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))

	e, ok := aerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"app_title", "app_license"}, e.Context["fields"])
}

func TestAppContext_Immutable(t *testing.T) {
	c, err := New("billing", sampleMetadata(), WithExtra("a", "1"))
	require.NoError(t, err)

	extras := c.Extras()
	extras["a"] = "changed"
	v, _ := c.Extra("a")
	assert.Equal(t, "1", v)

	d := c.With(WithExtra("a", "2"), WithDocsVersion("v2"))
	v, _ = c.Extra("a")
	assert.Equal(t, "1", v, "With must not mutate the receiver")
	assert.Empty(t, c.DocsVersion)
	v, _ = d.Extra("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, "v2", d.DocsVersion)
}

func TestYAMLProvider_SingleRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_title: Billing
app_description: Invoices
app_version: "1.0"
app_headline: Get paid
app_publisher: Example Ltd
source_link: https://git.example.com/billing
docs_base_url: https://docs.example.com
app_license: MIT
`), 0o600))

	c, err := Load(NewYAMLProvider(path), "billing")
	require.NoError(t, err)
	assert.Equal(t, "Billing", c.Title)
	assert.Equal(t, "1.0", c.Version)
}

func TestYAMLProvider_PerApp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
billing:
  app_title: Billing
stock:
  app_title: Stock
`), 0o600))

	meta, err := NewYAMLProvider(path).AppMetadata("stock")
	require.NoError(t, err)
	assert.Equal(t, "Stock", meta.Title)

	_, err = Load(NewYAMLProvider(path), "stock")
	require.Error(t, err, "incomplete records are fatal")
}

func TestYAMLProvider_MissingFile(t *testing.T) {
	_, err := NewYAMLProvider(filepath.Join(t.TempDir(), "none.yaml")).AppMetadata("billing")
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{"billing": sampleMetadata()}
	_, err := Load(p, "billing")
	require.NoError(t, err)
	_, err = Load(p, "stock")
	require.Error(t, err)
}
