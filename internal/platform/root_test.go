package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   blog/            .folio.toml
	//     content/posts/2024/
	//   mono/            .git
	//     sites/docs/    .folio/
	//       content/
	//   loose/

	base := t.TempDir()
	blog := filepath.Join(base, "blog")
	posts := filepath.Join(blog, "content", "posts", "2024")
	mono := filepath.Join(base, "mono")
	docs := filepath.Join(mono, "sites", "docs")
	loose := filepath.Join(base, "loose")

	for _, dir := range []string{
		posts,
		filepath.Join(mono, ".git"),
		filepath.Join(docs, ".folio"),
		filepath.Join(docs, "content"),
		loose,
	} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(blog, ".folio.toml"), []byte("content_dir = \"content\"\n"), 0644))

	tests := []struct {
		name     string
		start    string
		wantRoot string
		wantErr  bool
	}{
		{name: "Config File at Start", start: blog, wantRoot: blog},
		{name: "From Dated Post Directory", start: posts, wantRoot: blog},
		{name: "System Directory Beats Enclosing Git Root", start: filepath.Join(docs, "content"), wantRoot: docs},
		{name: "Git Root", start: filepath.Join(mono, "sites"), wantRoot: mono},
		{name: "No Marker", start: loose, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}
