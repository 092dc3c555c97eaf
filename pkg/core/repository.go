package core

import "context"

// Repository defines the contract for reading a content tree.
// Adhering to this interface allows the core to be independent of where
// documents live (local directory, git checkout, object storage).
type Repository interface {
	// Get retrieves a document by its ID.
	Get(ctx context.Context, id string) (Document, error)

	// List returns every document in the tree, bodies included.
	List(ctx context.Context) ([]Document, error)

	// Index returns every document with its header only. Implementations may
	// serve it from a cache.
	Index(ctx context.Context) ([]Document, error)

	// Raw returns the stored bytes of a document.
	Raw(ctx context.Context, id string) ([]byte, error)

	// Encode renders a document in its stored representation.
	Encode(doc Document) ([]byte, error)

	// Save persists a document, replacing the stored one.
	Save(ctx context.Context, doc Document) error
}

// Watchable defines an interface for repositories that can report changes.
type Watchable interface {
	// Watch emits an Event for every document matching pattern that changes
	// until ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// MetadataValidator applies extra, site-specific rules to a raw header.
type MetadataValidator interface {
	Validate(meta Metadata) []Issue
}

// Inspector examines a document body.
type Inspector interface {
	Inspect(doc Document) (Inspection, error)
}
