package folio_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/pkg/core"
)

// Example_basic checks a small content tree and lists its published posts.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "folio-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	posts := map[string]string{
		"newcomb.md": "---\ntitle: Newcomb's Paradox\ndate: 2024-06-17\ntags: [philosophy]\n---\nOne box or two?\n",
		"haskell.md": "---\ntitle: Unordered Containers\ndate: 2023-02-01\ntags: [haskell]\n---\nHash maps.\n",
		"wip.md":     "---\ntitle: Work in Progress\ndate: 2024-07-01\ndraft: true\n---\n",
	}
	for name, content := range posts {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			log.Fatal(err)
		}
	}

	svc, err := folio.New(tmpDir, folio.WithClock(func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	report, err := svc.CheckAll(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("checked %d documents, %d invalid\n", report.Summary.Documents, report.Summary.Invalid)

	entries, err := svc.Published(ctx, core.ListOptions{})
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Printf("%s %s\n", e.FrontMatter.Date.Format("2006-01-02"), e.FrontMatter.Title)
	}
	// Output:
	// checked 3 documents, 0 invalid
	// 2023-02-01 Unordered Containers
	// 2024-06-17 Newcomb's Paradox
}
