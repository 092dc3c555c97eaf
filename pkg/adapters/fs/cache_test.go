package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/folio/pkg/core"
)

func TestCache_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		c := newCache(t.TempDir(), ".folio")

		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries, got %d", c.Len())
		}
	})

	t.Run("Loads Valid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".folio")
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			t.Fatal(err)
		}

		jsonContent := `{
			"version": 1,
			"entries": {
				"posts/newcomb.md": {
					"id": "posts/newcomb",
					"format": "yaml",
					"metadata": {"title": "Newcomb", "date": "2024-06-17"},
					"size": 42
				}
			}
		}`
		if err := os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte(jsonContent), 0644); err != nil {
			t.Fatal(err)
		}

		c := newCache(tmpDir, ".folio")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		entry, ok := c.index.Entries["posts/newcomb.md"]
		if !ok {
			t.Fatal("Expected entry posts/newcomb.md not found")
		}
		if entry.Format != core.FormatYAML {
			t.Errorf("Expected yaml format, got %q", entry.Format)
		}
		if entry.Metadata["title"] != "Newcomb" {
			t.Errorf("Expected title 'Newcomb', got '%v'", entry.Metadata["title"])
		}
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".folio")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte("{ invalid json"), 0644)

		c := newCache(tmpDir, ".folio")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected empty entries after corruption, got %d", c.Len())
		}
		if !c.index.dirty {
			t.Error("Expected a corrupted cache to be rewritten on next save")
		}
	})

	t.Run("Resets on Version Mismatch", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheDir := filepath.Join(tmpDir, ".folio")
		os.MkdirAll(cacheDir, 0755)
		os.WriteFile(filepath.Join(cacheDir, "index.json"), []byte(`{"version": 99, "entries": {"a.md": {"id": "a"}}}`), 0644)

		c := newCache(tmpDir, ".folio")
		if err := c.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("Expected outdated entries to be dropped, got %d", c.Len())
		}
	})
}

func TestCache_Save(t *testing.T) {
	t.Run("Does Not Save if Not Dirty", func(t *testing.T) {
		c := newCache(t.TempDir(), ".folio")

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := os.Stat(c.Path); !os.IsNotExist(err) {
			t.Error("Expected index.json NOT to exist")
		}
	})

	t.Run("Saves if Dirty", func(t *testing.T) {
		c := newCache(t.TempDir(), ".folio")
		c.Set("foo.md", &indexEntry{ID: "foo"})

		if err := c.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := os.Stat(c.Path); os.IsNotExist(err) {
			t.Fatal("Expected index.json to exist")
		}
		if c.index.dirty {
			t.Error("Expected dirty to be false after save")
		}
	})
}

func TestCache_Get_Set(t *testing.T) {
	c := newCache(t.TempDir(), ".folio")

	now := time.Now().Truncate(time.Second)
	c.Set("test.md", &indexEntry{ID: "test", LastModified: now, Size: 10})

	t.Run("Hit with Same Mtime and Size", func(t *testing.T) {
		got, hit := c.Get("test.md", now, 10)
		if !hit {
			t.Fatal("Expected cache hit")
		}
		if got.ID != "test" {
			t.Errorf("Expected ID 'test', got '%s'", got.ID)
		}
	})

	t.Run("Miss with Different Mtime", func(t *testing.T) {
		if _, hit := c.Get("test.md", now.Add(time.Hour), 10); hit {
			t.Error("Expected cache miss due to mtime mismatch")
		}
	})

	t.Run("Miss with Different Size", func(t *testing.T) {
		if _, hit := c.Get("test.md", now, 11); hit {
			t.Error("Expected cache miss due to size mismatch")
		}
	})

	t.Run("Miss with Missing Key", func(t *testing.T) {
		if _, hit := c.Get("ghost.md", now, 10); hit {
			t.Error("Expected cache miss for missing key")
		}
	})
}

func TestCache_Prune(t *testing.T) {
	c := newCache(t.TempDir(), ".folio")

	c.Set("keep.md", &indexEntry{ID: "keep"})
	c.Set("drop.md", &indexEntry{ID: "drop"})
	c.index.dirty = false

	c.Prune(map[string]bool{"keep.md": true})

	if _, ok := c.index.Entries["keep.md"]; !ok {
		t.Error("Expected keep.md to remain")
	}
	if _, ok := c.index.Entries["drop.md"]; ok {
		t.Error("Expected drop.md to be removed")
	}
	if !c.index.dirty {
		t.Error("Expected dirty to be true after pruning")
	}
}
