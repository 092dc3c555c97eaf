// Package schema applies a site-specific JSON Schema to document headers.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/folio/pkg/core"
)

const resourceName = "schema.json"

// Validator checks raw metadata against a compiled schema.
// It implements core.MetadataValidator.
type Validator struct {
	schema *jsonschema.Schema
	source string
}

// Load reads and compiles a schema file. Files ending in .yaml or .yml are
// accepted and converted to JSON first.
func Load(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("failed to convert schema %s: %w", path, err)
		}
	}

	v, err := Compile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	v.source = path
	return v, nil
}

// Compile builds a validator from a JSON schema document (Draft 2020-12
// unless the schema declares otherwise).
func Compile(data []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resourceName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: compiled, source: resourceName}, nil
}

// Source names where the schema came from.
func (v *Validator) Source() string {
	return v.source
}

// Validate reports every schema violation in meta as an error issue.
// Dates decoded by the header format are compared in their RFC 3339 form.
func (v *Validator) Validate(meta core.Metadata) []core.Issue {
	instance, err := normalize(meta)
	if err != nil {
		return []core.Issue{{
			Severity: core.SeverityError,
			Code:     core.CodeSchemaViolation,
			Message:  fmt.Sprintf("metadata cannot be expressed as JSON: %v", err),
		}}
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []core.Issue{{Severity: core.SeverityError, Code: core.CodeSchemaViolation, Message: err.Error()}}
	}

	var issues []core.Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "/"
			}
			issues = append(issues, core.Issue{
				Severity: core.SeverityError,
				Field:    fieldOf(node.InstanceLocation),
				Code:     core.CodeSchemaViolation,
				Message:  fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Message < issues[j].Message })
	return issues
}

// normalize turns decoded header values into plain JSON values.
func normalize(meta core.Metadata) (any, error) {
	if meta == nil {
		meta = core.Metadata{}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fieldOf returns the top-level key of a JSON pointer such as "/tags/0".
func fieldOf(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(pointer, '/'); i >= 0 {
		pointer = pointer[:i]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(pointer)
}

var _ core.MetadataValidator = (*Validator)(nil)
