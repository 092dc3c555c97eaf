package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
)

const blogSchema = `{
  "type": "object",
  "required": ["title", "date", "author"],
  "properties": {
    "title":  {"type": "string", "maxLength": 80},
    "date":   {"type": "string", "format": "date-time"},
    "author": {"type": "string"},
    "tags":   {"type": "array", "maxItems": 3, "items": {"type": "string"}}
  }
}`

func TestValidate(t *testing.T) {
	v, err := Compile([]byte(blogSchema))
	require.NoError(t, err)

	t.Run("Valid Header", func(t *testing.T) {
		issues := v.Validate(core.Metadata{
			"title":  "Newcomb's Paradox",
			"date":   time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
			"author": "ada",
			"tags":   []any{"philosophy"},
		})
		assert.Empty(t, issues)
	})

	t.Run("Violations", func(t *testing.T) {
		issues := v.Validate(core.Metadata{
			"title": "Too many tags",
			"date":  time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
			"tags":  []any{"a", "b", "c", "d"},
		})
		require.Len(t, issues, 2)

		fields := []string{issues[0].Field, issues[1].Field}
		assert.ElementsMatch(t, []string{"", "tags"}, fields)
		for _, issue := range issues {
			assert.Equal(t, core.SeverityError, issue.Severity)
			assert.Equal(t, core.CodeSchemaViolation, issue.Code)
		}
	})

	t.Run("Nil Metadata", func(t *testing.T) {
		assert.NotEmpty(t, v.Validate(nil))
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML Schema", func(t *testing.T) {
		path := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("type: object\nrequired: [title]\n"), 0644))

		v, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, path, v.Source())
		assert.Len(t, v.Validate(core.Metadata{}), 1)
		assert.Empty(t, v.Validate(core.Metadata{"title": "x"}))
	})

	t.Run("Invalid Schema", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type": 12}`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})
}

func TestFieldOf(t *testing.T) {
	assert.Equal(t, "tags", fieldOf("/tags/3"))
	assert.Equal(t, "", fieldOf(""))
	assert.Equal(t, "a/b", fieldOf("/a~1b"))
}
