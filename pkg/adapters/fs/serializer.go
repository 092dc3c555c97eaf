package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/folio/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads from r and returns a Document.
	Parse(r io.Reader) (*core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers() map[string]Serializer {
	md := NewMarkdownSerializer()
	return map[string]Serializer{
		".md":       md,
		".markdown": md,
	}
}

var (
	yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)
	tomlFormat = frontmatter.NewFormat("+++", "+++", toml.Unmarshal)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MarkdownSerializer handles Markdown files with a YAML, TOML or JSON
// front matter header. The header format is detected on parse and kept on
// the document so it is written back the same way.
type MarkdownSerializer struct{}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer() *MarkdownSerializer {
	return &MarkdownSerializer{}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	doc := &core.Document{
		Format:   detectFormat(data),
		Metadata: make(core.Metadata),
	}

	var (
		meta map[string]any
		body []byte
	)
	switch doc.Format {
	case core.FormatNone:
		doc.Content = string(data)
		return doc, nil
	case core.FormatJSON:
		header, rest, ok := splitJSONHeader(data)
		if !ok {
			return nil, core.ErrUnterminatedFrontMatter
		}
		if err := json.Unmarshal(header, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedFrontMatter, err)
		}
		body = rest
	default:
		format, delim := yamlFormat, "---"
		if doc.Format == core.FormatTOML {
			format, delim = tomlFormat, "+++"
		}
		if !hasClosingDelimiter(data, delim) {
			return nil, core.ErrUnterminatedFrontMatter
		}
		rest, err := frontmatter.Parse(bytes.NewReader(data), &meta, format)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedFrontMatter, err)
		}
		body = rest
	}

	if meta != nil {
		doc.Metadata = meta
	}
	doc.Content = string(body)
	return doc, nil
}

func (s *MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	format := doc.Format
	if format == core.FormatNone || format == "" {
		if len(doc.Metadata) == 0 {
			return []byte(doc.Content), nil
		}
		format = core.FormatYAML
	}

	var buf bytes.Buffer
	switch format {
	case core.FormatYAML:
		buf.WriteString("---\n")
		if len(doc.Metadata) > 0 {
			if err := encodeYAML(&buf, doc.Metadata); err != nil {
				return nil, err
			}
		}
		buf.WriteString("---\n")

	case core.FormatTOML:
		buf.WriteString("+++\n")
		if err := toml.NewEncoder(&buf).Encode(map[string]any(doc.Metadata)); err != nil {
			return nil, fmt.Errorf("failed to encode toml header: %w", err)
		}
		buf.WriteString("+++\n")

	case core.FormatJSON:
		data, err := json.MarshalIndent(map[string]any(doc.Metadata), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json header: %w", err)
		}
		buf.Write(data)
		buf.WriteString("\n\n")

	default:
		return nil, fmt.Errorf("unsupported front matter format %q", format)
	}

	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

// splitJSONHeader cuts data after the first line holding only "}". One blank
// line separating the header from the body is dropped.
func splitJSONHeader(data []byte) (header, body []byte, ok bool) {
	offset := 0
	for offset < len(data) {
		line, next := data[offset:], len(data)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, next = line[:i], offset+i+1
		}
		if offset > 0 && string(bytes.TrimRight(line, " \t\r")) == "}" {
			body = data[next:]
			if rest, found := bytes.CutPrefix(body, []byte("\n")); found {
				body = rest
			} else if rest, found := bytes.CutPrefix(body, []byte("\r\n")); found {
				body = rest
			}
			return data[:offset+len(line)], body, true
		}
		offset = next
	}
	return nil, nil, false
}

// encodeYAML writes meta with sorted keys and two-space indent. Dates are
// written plain, as authors type them: date-only timestamps keep the short
// form, and strings that read as timestamps lose the quotes yaml.v3 would add.
func encodeYAML(w io.Writer, meta core.Metadata) error {
	var node yaml.Node
	if err := node.Encode(plainDates(map[string]any(meta))); err != nil {
		return fmt.Errorf("failed to encode yaml header: %w", err)
	}
	plainTimestamps(&node)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return fmt.Errorf("failed to encode yaml header: %w", err)
	}
	return encoder.Close()
}

// plainDates returns v with every midnight UTC timestamp turned into its
// 2006-01-02 form. yaml.v3 decodes a bare date that way.
func plainDates(v any) any {
	switch t := v.(type) {
	case time.Time:
		if isDateOnly(t) {
			return t.Format(time.DateOnly)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plainDates(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainDates(item)
		}
		return out
	default:
		return v
	}
}

func isDateOnly(t time.Time) bool {
	_, offset := t.Zone()
	return offset == 0 && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func plainTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && looksLikeTimestamp(n.Value) {
		n.Tag = "!!timestamp"
		n.Style = 0
	}
	for _, c := range n.Content {
		plainTimestamps(c)
	}
}

// Layouts yaml.v3 resolves as timestamps.
var yamlTimestampLayouts = []string{
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

func looksLikeTimestamp(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	for _, layout := range yamlTimestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func detectFormat(data []byte) core.Format {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	first := strings.TrimRight(string(line), " \t\r")
	switch {
	case first == "---":
		return core.FormatYAML
	case first == "+++":
		return core.FormatTOML
	case first == "{":
		return core.FormatJSON
	default:
		return core.FormatNone
	}
}

func hasClosingDelimiter(data []byte, delim string) bool {
	lines := strings.Split(string(data), "\n")
	for _, line := range lines[1:] {
		if strings.TrimRight(line, " \t\r") == delim {
			return true
		}
	}
	return false
}
