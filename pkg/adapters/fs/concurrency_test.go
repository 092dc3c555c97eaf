package fs_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
)

// TestConcurrency_ExternalVsInternal runs outside edits, saves, index scans
// and a watcher against the same tree at once.
func TestConcurrency_ExternalVsInternal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	repo, root := setupRepo(t, map[string]string{"posts/seed.md": newcomb})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	loop := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
					fn()
					time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
				}
			}
		}()
	}

	loop(func() {
		path := filepath.Join(root, "posts", fmt.Sprintf("noise-%d.md", rand.Intn(10)))
		content := fmt.Sprintf("---\ntitle: Noise\ndate: 2024-01-01\n---\n%d\n", time.Now().UnixNano())
		_ = os.WriteFile(path, []byte(content), 0644)
	})
	loop(func() {
		// Errors are tolerated while files are replaced underneath.
		_ = repo.Save(context.Background(), core.Document{
			ID:       fmt.Sprintf("posts/data-%d", rand.Intn(10)),
			Format:   core.FormatYAML,
			Metadata: core.Metadata{"title": "Data", "date": "2024-01-01"},
			Content:  "Internal data\n",
		})
	})
	loop(func() {
		_, _ = repo.Index(context.Background())
	})

	events, err := repo.Watch(ctx, "")
	require.NoError(t, err)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range events {
		}
	}()

	wg.Wait()

	docs, err := repo.Index(context.Background())
	require.NoError(t, err)
	for _, d := range docs {
		require.NoError(t, d.ParseErr, d.ID)
	}
	t.Logf("Survived chaos with %d documents", len(docs))
}
