package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), Options{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, "static", cfg.StaticDir)
	assert.Equal(t, ".folio", cfg.SystemDir)
	assert.Empty(t, cfg.Ignore)
	assert.False(t, cfg.Strict)
	assert.Equal(t, 70, cfg.SummaryWords)
	assert.Empty(t, cfg.File)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".folio.yaml"), []byte(
		"content_dir: site/content\nignore:\n  - drafts/**\n  - \"**/_*.md\"\nstrict: true\nschema: schema.json\n",
	), 0644))

	cfg, err := Load(New(), Options{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "site/content", cfg.ContentDir)
	assert.Equal(t, []string{"drafts/**", "**/_*.md"}, cfg.Ignore)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "schema.json", cfg.Schema)
	assert.Equal(t, filepath.Join(dir, ".folio.yaml"), cfg.File)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	require.NoError(t, os.WriteFile(path, []byte("check_refs = true\nsummary_words = 40\n"), 0644))

	cfg, err := Load(New(), Options{ConfigFile: path, Dir: dir})
	require.NoError(t, err)
	assert.True(t, cfg.CheckRefs)
	assert.Equal(t, 40, cfg.SummaryWords)

	t.Run("Missing Explicit File Fails", func(t *testing.T) {
		_, err := Load(New(), Options{ConfigFile: filepath.Join(dir, "absent.yaml"), Dir: dir})
		assert.Error(t, err)
	})
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".folio.yaml"), []byte("strict: false\n"), 0644))

	t.Setenv("FOLIO_STRICT", "true")
	t.Setenv("FOLIO_IGNORE", "drafts/**, tmp/**")

	cfg, err := Load(New(), Options{Dir: dir})
	require.NoError(t, err)
	assert.True(t, cfg.Strict, "environment overrides the config file")
	assert.Equal(t, []string{"drafts/**", "tmp/**"}, cfg.Ignore)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOLIO_METRICS_FILE=/tmp/folio.prom\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FOLIO_METRICS_FILE") })

	cfg, err := Load(New(), Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/folio.prom", cfg.MetricsFile)
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".folio.yaml"), []byte("ignore: [unclosed\n"), 0644))

	_, err := Load(New(), Options{Dir: dir})
	assert.Error(t, err)
}
