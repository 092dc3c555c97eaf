package core

import "errors"

// Common errors.
var (
	ErrNotFound                = errors.New("document not found")
	ErrEmptyID                 = errors.New("document ID cannot be empty")
	ErrUnterminatedFrontMatter = errors.New("front matter started but no closing delimiter found")
	ErrMalformedFrontMatter    = errors.New("malformed front matter")
	ErrNoFrontMatter           = errors.New("document has no front matter")
	ErrWatchUnsupported        = errors.New("repository does not support watching")
	ErrUnknownTaxonomy         = errors.New("unknown taxonomy")
)
