package folio_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/pkg/core"
)

const benchPosts = 2000

func seedPosts(tb testing.TB, n int) string {
	tb.Helper()
	dir := tb.TempDir()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		sub := filepath.Join(dir, "posts", fmt.Sprintf("%02d", i%50))
		require.NoError(tb, os.MkdirAll(sub, 0755))
		content := fmt.Sprintf("---\ntitle: Post %d\ndate: %s\ntags: [bench, tag-%d]\n---\n# Post %d\n\nGenerated with a [link](../other/).\n",
			i, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), i%10, i)
		require.NoError(tb, os.WriteFile(filepath.Join(sub, fmt.Sprintf("post-%d.md", i)), []byte(content), 0644))
	}
	return dir
}

func published(b *testing.B, dir string) {
	svc, err := folio.New(dir, folio.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		b.Fatal(err)
	}
	entries, err := svc.Published(context.Background(), core.ListOptions{})
	if err != nil {
		b.Fatal(err)
	}
	if len(entries) != benchPosts {
		b.Fatalf("expected %d entries, got %d", benchPosts, len(entries))
	}
}

// BenchmarkPublished lists a generated blog with a fresh service per run,
// as each CLI invocation would build one.
// Run with: go test -bench=Published -benchmem -run=^$ .
func BenchmarkPublished(b *testing.B) {
	dir := seedPosts(b, benchPosts)

	b.Run("Cold", func(b *testing.B) {
		for n := 0; n < b.N; n++ {
			b.StopTimer()
			require.NoError(b, os.RemoveAll(filepath.Join(dir, ".folio")))
			b.StartTimer()

			published(b, dir)
		}
	})

	b.Run("Warm", func(b *testing.B) {
		published(b, dir)
		b.ResetTimer()

		for n := 0; n < b.N; n++ {
			published(b, dir)
		}
	})
}
