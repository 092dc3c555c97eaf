// Command bench measures listing a generated blog, cold and then warm
// from the header index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of posts to generate")
	keep := flag.Bool("keep", false, "Keep the generated content after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "folio_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d posts in %s...\n", *count, benchDir)
	startGen := time.Now()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < *count; i++ {
		dir := filepath.Join(benchDir, "posts", fmt.Sprintf("%03d", i%100))
		if err := os.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
		content := fmt.Sprintf("---\ntitle: Post %d\ndate: %s\ntags: [benchmark, tag-%d]\ncategories: [notes]\n---\n# Post %d\n\nThis is a generated post with a [link](../other/) and `code`.\n",
			i, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), i%10, i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("post_%d.md", i)), []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	// A fresh service per run, as each CLI invocation would build one.
	run := func(label string) time.Duration {
		svc, err := folio.New(benchDir, folio.WithLogger(logger))
		if err != nil {
			panic(err)
		}
		fmt.Printf("Running Published (%s)...\n", label)
		start := time.Now()
		entries, err := svc.Published(ctx, core.ListOptions{})
		if err != nil {
			panic(err)
		}
		d := time.Since(start)
		fmt.Printf("%s Result: %v (Items: %d)\n", label, d, len(entries))
		return d
	}

	cold := run("Cold")
	warm := run("Warm")

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d posts):\n", *count)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}
