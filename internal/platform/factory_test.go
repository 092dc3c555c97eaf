package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/internal/platform"
	"github.com/aretw0/folio/pkg/core"
)

func writeContent(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestNew(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"posts/newcomb.md": "---\ntitle: Newcomb\ndate: 2024-06-17\ntags: [philosophy]\n---\n![boxes](boxes.png)\n",
		"drafts/wip.md":    "---\ntitle: WIP\n---\n",
	})

	svc, err := platform.New(root,
		platform.WithIgnore("drafts/**"),
		platform.WithReferenceChecks(true),
		platform.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)

	report, err := svc.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1, "ignored paths are not checked")

	res := report.Results[0]
	assert.True(t, res.Valid())
	require.NotNil(t, res.Inspection)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, core.CodeRefMissing, res.Issues[0].Code)

	entries, err := svc.Published(context.Background(), core.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "posts/newcomb", entries[0].ID)
}

func TestNew_Schema(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, map[string]string{
		"post.md":     "---\ntitle: Post\ndate: 2024-06-17\n---\n",
		"schema.json": `{"type": "object", "required": ["author"]}`,
	})

	svc, err := platform.New(root, platform.WithSchema(filepath.Join(root, "schema.json")), platform.WithInspection(false))
	require.NoError(t, err)

	res, err := svc.Check(context.Background(), "post")
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Nil(t, res.Inspection)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, core.CodeSchemaViolation, res.Issues[0].Code)
}

func TestNew_Errors(t *testing.T) {
	t.Run("Missing Content Dir", func(t *testing.T) {
		_, err := platform.New(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("Missing Schema", func(t *testing.T) {
		_, err := platform.New(t.TempDir(), platform.WithSchema("absent.json"))
		assert.Error(t, err)
	})
}

type staticRepo struct {
	core.Repository
	docs []core.Document
}

func (r staticRepo) List(ctx context.Context) ([]core.Document, error) { return r.docs, nil }

func TestNew_InjectedRepository(t *testing.T) {
	repo := staticRepo{docs: []core.Document{{
		ID:       "injected",
		Format:   core.FormatYAML,
		Metadata: core.Metadata{"title": "Injected", "date": "2024-01-01"},
	}}}

	svc, err := platform.New("unused", platform.WithRepository(repo), platform.WithInspection(false))
	require.NoError(t, err)
	assert.Equal(t, repo, svc.Repository())

	report, err := svc.CheckAll(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK(true))
}
