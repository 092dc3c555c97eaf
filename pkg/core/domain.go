// Package core holds the content document model, the publishing contract and
// the service that derives listings and taxonomies from a content tree.
package core

import "time"

// Metadata represents the raw key-value pairs of a document header.
type Metadata map[string]any

// Format identifies the front matter encoding of a document header.
type Format string

const (
	FormatNone Format = "none"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Document is one content file: a metadata header followed by a Markdown body.
type Document struct {
	// ID is the path relative to the content root, with the Markdown extension stripped.
	ID string
	// Path is the path relative to the content root, including the extension.
	Path     string
	Format   Format
	Metadata Metadata
	Content  string
	ModTime  time.Time

	// ParseErr is set when the header could not be read. Such documents are
	// still listed so the failure surfaces as an issue instead of a gap.
	ParseErr error
}

// FrontMatter decodes the typed metadata record of the document.
// Decoding problems are ignored here; use Check to report them.
func (d Document) FrontMatter() FrontMatter {
	fm, _ := DecodeFrontMatter(d.Metadata)
	return fm
}

// EventType represents the type of change in the content tree.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the content tree.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
