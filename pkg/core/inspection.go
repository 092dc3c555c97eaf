package core

// ReferenceKind tells links from images.
type ReferenceKind string

const (
	RefLink  ReferenceKind = "link"
	RefImage ReferenceKind = "image"
)

// Reference is a link or image target found in a document body.
type Reference struct {
	Kind     ReferenceKind `json:"kind"`
	Target   string        `json:"target"`
	Text     string        `json:"text,omitempty"`
	External bool          `json:"external"`
}

// Directive is a generator shortcode embedded in the body, such as
// {{< figure src="/img/a.png" title="Caption" >}}.
type Directive struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
	// Args holds positional parameters.
	Args []string `json:"args,omitempty"`
	Raw  string   `json:"raw"`
}

// Inspection summarises what a document body contains.
type Inspection struct {
	References    []Reference `json:"references,omitempty"`
	Directives    []Directive `json:"directives,omitempty"`
	CodeLanguages []string    `json:"code_languages,omitempty"`
	CodeBlocks    int         `json:"code_blocks"`
	Words         int         `json:"words"`
	// Summary is derived from the first paragraph of the body.
	Summary string  `json:"summary,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

// External returns the outbound references.
func (in Inspection) External() []Reference {
	var out []Reference
	for _, r := range in.References {
		if r.External {
			out = append(out, r)
		}
	}
	return out
}
