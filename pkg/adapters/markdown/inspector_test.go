package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
)

func codes(issues []core.Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestInspect_Body(t *testing.T) {
	body := strings.Join([]string{
		"Rolling hashes make **substring search** fast. See [the paper](https://example.org/paper.pdf)",
		"and [my earlier post](../haskell-unordered/).",
		"",
		"![diagram](diagram.png)",
		"",
		"Visit https://go.dev for more.",
		"",
		"```haskell",
		"main = print [x | x <- [1..10]]",
		"```",
		"",
		"```go",
		"fmt.Println(\"{{< figure >}}\")",
		"```",
		"",
		"```haskell",
		"-- again",
		"```",
	}, "\n")

	in, err := NewInspector().Inspect(core.Document{ID: "posts/rolling", Path: "posts/rolling.md", Content: body})
	require.NoError(t, err)

	assert.Equal(t, 3, in.CodeBlocks)
	assert.Equal(t, []string{"haskell", "go"}, in.CodeLanguages)
	assert.Empty(t, in.Directives, "directives inside code are ignored")
	assert.Empty(t, in.Issues)

	require.Len(t, in.References, 4)
	assert.Equal(t, core.Reference{Kind: core.RefLink, Target: "https://example.org/paper.pdf", Text: "the paper", External: true}, in.References[0])
	assert.Equal(t, core.Reference{Kind: core.RefLink, Target: "../haskell-unordered/", Text: "my earlier post"}, in.References[1])
	assert.Equal(t, core.Reference{Kind: core.RefImage, Target: "diagram.png", Text: "diagram"}, in.References[2])
	assert.Equal(t, "https://go.dev", in.References[3].Target)
	assert.Len(t, in.External(), 2)

	assert.True(t, strings.HasPrefix(in.Summary, "Rolling hashes make substring search fast."))
	assert.Greater(t, in.Words, 15)
}

func TestInspect_Summary(t *testing.T) {
	t.Run("Truncates First Paragraph", func(t *testing.T) {
		long := strings.Repeat("word ", 100)
		in, err := NewInspector(WithSummaryWords(5)).Inspect(core.Document{Content: "# Heading\n\n" + long + "\n\nSecond paragraph."})
		require.NoError(t, err)
		assert.Equal(t, "word word word word word…", in.Summary)
	})

	t.Run("Short Paragraph Kept Whole", func(t *testing.T) {
		in, err := NewInspector().Inspect(core.Document{Content: "Just a *short* intro.\n\nMore."})
		require.NoError(t, err)
		assert.Equal(t, "Just a short intro.", in.Summary)
	})

	t.Run("Explicit Divider", func(t *testing.T) {
		in, err := NewInspector().Inspect(core.Document{Content: "First part.\n\nSecond part.\n\n<!--more-->\n\nRest of the post."})
		require.NoError(t, err)
		assert.Equal(t, "First part. Second part.", in.Summary)
	})
}

func TestInspect_Directives(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		directives int
		issues     []string
	}{
		{
			name:       "Figure With Source",
			body:       `{{< figure src="/img/newcomb.png" title="Two boxes" >}}`,
			directives: 1,
		},
		{
			name:       "Figure Without Source",
			body:       `{{< figure title="No image" >}}`,
			directives: 1,
			issues:     []string{core.CodeDirectiveMalformed},
		},
		{
			name:       "Paired Directive",
			body:       "{{% note %}}\nCareful.\n{{% /note %}}",
			directives: 1,
		},
		{
			name:   "Stray Closing",
			body:   "{{< /note >}}",
			issues: []string{core.CodeDirectiveMalformed},
		},
		{
			name:   "Mismatched Delimiters",
			body:   "{{< note %}}",
			issues: []string{core.CodeDirectiveMalformed},
		},
		{
			name:   "Unterminated",
			body:   "Text {{< figure src=\"a.png\"\n\nmore text",
			issues: []string{core.CodeDirectiveMalformed},
		},
		{
			name:   "Unterminated Quote",
			body:   `{{< figure src="a.png >}}`,
			issues: []string{core.CodeDirectiveMalformed},
		},
		{
			name: "Escaped Directive",
			body: "{{</* figure src=\"x.png\" */>}}",
		},
		{
			name: "Inside Code Span",
			body: "Write `{{< figure >}}` to embed one.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := NewInspector().Inspect(core.Document{Content: tt.body})
			require.NoError(t, err)
			assert.Len(t, in.Directives, tt.directives)
			assert.Equal(t, tt.issues, codes(in.Issues))
			for _, issue := range in.Issues {
				assert.Equal(t, core.SeverityWarning, issue.Severity)
			}
		})
	}

	t.Run("Parses Parameters", func(t *testing.T) {
		in, err := NewInspector().Inspect(core.Document{Content: `{{< figure src="/img/a.png" title="A caption" class=wide >}} {{< gist user 1234 >}}`})
		require.NoError(t, err)
		require.Len(t, in.Directives, 2)

		fig := in.Directives[0]
		assert.Equal(t, "figure", fig.Name)
		assert.Equal(t, map[string]string{"src": "/img/a.png", "title": "A caption", "class": "wide"}, fig.Params)

		gist := in.Directives[1]
		assert.Equal(t, []string{"user", "1234"}, gist.Args)

		require.Len(t, in.References, 1)
		assert.Equal(t, core.Reference{Kind: core.RefImage, Target: "/img/a.png", Text: "A caption"}, in.References[0])
	})
}

func TestInspect_ReferenceChecks(t *testing.T) {
	content := t.TempDir()
	static := t.TempDir()

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	require.NoError(t, os.MkdirAll(filepath.Join(content, "posts", "newcomb"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(content, "posts", "newcomb", "boxes.png"), png, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(content, "posts", "haskell.md"), []byte("---\ntitle: H\n---\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(static, "img"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "img", "fake.png"), []byte("just some text"), 0644))

	body := strings.Join([]string{
		"![boxes](newcomb/boxes.png)",
		"![fake](/img/fake.png)",
		"![gone](/img/gone.png)",
		"[sibling](haskell)",
		"[missing](nowhere.md)",
		"[anchor](#top)",
		"[outbound](https://example.org/missing.png)",
	}, "\n\n")
	doc := core.Document{ID: "posts/newcomb", Path: "posts/newcomb.md", Content: body}

	t.Run("Disabled by Default", func(t *testing.T) {
		in, err := NewInspector(WithContentDir(content), WithStaticDir(static)).Inspect(doc)
		require.NoError(t, err)
		assert.Empty(t, in.Issues)
	})

	t.Run("Enabled", func(t *testing.T) {
		in, err := NewInspector(
			WithContentDir(content),
			WithStaticDir(static),
			WithReferenceChecks(true),
		).Inspect(doc)
		require.NoError(t, err)

		assert.Equal(t, []string{core.CodeRefNotImage, core.CodeRefMissing, core.CodeRefMissing}, codes(in.Issues))
		assert.Contains(t, in.Issues[1].Message, "/img/gone.png")
		assert.Contains(t, in.Issues[2].Message, "nowhere.md")
	})
}

func TestIsExternal(t *testing.T) {
	assert.True(t, isExternal("https://example.org"))
	assert.True(t, isExternal("mailto:me@example.org"))
	assert.True(t, isExternal("//cdn.example.org/a.js"))
	assert.False(t, isExternal("/img/a.png"))
	assert.False(t, isExternal("../post/"))
	assert.False(t, isExternal("#section"))
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "{{< figure >}}", abbreviate("{{<   figure\n >}}"))

	long := strings.Repeat("é", 70)
	got := abbreviate(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 57)+"...", got)

	exact := strings.Repeat("日", 60)
	assert.Equal(t, exact, abbreviate(exact))
}
