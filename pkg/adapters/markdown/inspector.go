// Package markdown inspects document bodies: links, images, code blocks,
// generator directives and the derived summary.
package markdown

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/aretw0/folio/pkg/core"
)

// DefaultSummaryWords is the length of a derived summary.
const DefaultSummaryWords = 70

// moreDivider marks an explicit summary boundary in a body.
const moreDivider = "<!--more-->"

// Inspector implements core.Inspector with goldmark.
type Inspector struct {
	md           goldmark.Markdown
	contentDir   string
	staticDir    string
	checkRefs    bool
	summaryWords int
	logger       *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithContentDir sets the content root relative links resolve against.
func WithContentDir(dir string) Option {
	return func(i *Inspector) { i.contentDir = dir }
}

// WithStaticDir sets the directory root-relative references resolve against.
func WithStaticDir(dir string) Option {
	return func(i *Inspector) { i.staticDir = dir }
}

// WithReferenceChecks enables existence and type checks on local references.
func WithReferenceChecks(enabled bool) Option {
	return func(i *Inspector) { i.checkRefs = enabled }
}

// WithSummaryWords caps the derived summary.
func WithSummaryWords(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.summaryWords = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInspector builds an inspector parsing GitHub Flavored Markdown.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
		summaryWords: DefaultSummaryWords,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect parses the body of doc and reports what it contains.
func (i *Inspector) Inspect(doc core.Document) (core.Inspection, error) {
	src := []byte(doc.Content)
	root := i.md.Parser().Parse(text.NewReader(src))

	var (
		in        core.Inspection
		code      []span
		languages = make(map[string]bool)
		summary   string
	)

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			in.References = append(in.References, newReference(core.RefLink, string(node.Destination), plainText(node, src)))
		case *ast.Image:
			in.References = append(in.References, newReference(core.RefImage, string(node.Destination), plainText(node, src)))
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL {
				in.References = append(in.References, newReference(core.RefLink, string(node.URL(src)), string(node.Label(src))))
			}
		case *ast.FencedCodeBlock:
			in.CodeBlocks++
			code = append(code, linesSpan(node))
			if lang := string(node.Language(src)); lang != "" && !languages[lang] {
				languages[lang] = true
				in.CodeLanguages = append(in.CodeLanguages, lang)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			in.CodeBlocks++
			code = append(code, linesSpan(node))
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			code = append(code, childrenSpan(node))
		case *ast.Text:
			in.Words += len(strings.Fields(string(node.Segment.Value(src))))
		case *ast.Paragraph:
			if summary == "" && node.Parent() == root {
				summary = plainText(node, src)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return core.Inspection{}, err
	}

	if idx := bytes.Index(src, []byte(moreDivider)); idx >= 0 {
		summary = i.leadText(src[:idx])
	} else {
		summary = truncateWords(summary, i.summaryWords)
	}
	in.Summary = summary

	directives, refs, issues := scanDirectives(doc.Content, code)
	in.Directives = directives
	in.References = append(in.References, refs...)
	in.Issues = append(in.Issues, issues...)

	if i.checkRefs {
		in.Issues = append(in.Issues, i.checkReferences(doc, in.References)...)
	}
	return in, nil
}

// leadText returns the plain text of every paragraph in src.
func (i *Inspector) leadText(src []byte) string {
	root := i.md.Parser().Parse(text.NewReader(src))
	var parts []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if p, ok := n.(*ast.Paragraph); ok {
			if t := plainText(p, src); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// plainText flattens the inline text beneath n.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}

// span is a half-open byte range of the body.
type span struct{ start, stop int }

func (s span) contains(pos int) bool { return pos >= s.start && pos < s.stop }

func linesSpan(n ast.Node) span {
	lines := n.Lines()
	if lines.Len() == 0 {
		return span{}
	}
	return span{start: lines.At(0).Start, stop: lines.At(lines.Len() - 1).Stop}
}

func childrenSpan(n ast.Node) span {
	s := span{start: -1}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if s.start < 0 || t.Segment.Start < s.start {
			s.start = t.Segment.Start
		}
		if t.Segment.Stop > s.stop {
			s.stop = t.Segment.Stop
		}
	}
	if s.start < 0 {
		return span{}
	}
	return s
}

func inCode(pos int, code []span) bool {
	for _, s := range code {
		if s.contains(pos) {
			return true
		}
	}
	return false
}

var _ core.Inspector = (*Inspector)(nil)
