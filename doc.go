// Package folio is the composition root for folio, a checker and indexer for
// the Markdown content tree of a static-site blog.
//
// It connects the core contract (pkg/core) with the infrastructure adapters
// (filesystem, Markdown inspection, JSON Schema) using the Hexagonal
// Architecture pattern.
//
// Every content file is a metadata header followed by a Markdown body. The
// header carries a title, a date, an optional draft flag and optional tags,
// categories, summary and slug. folio enforces that contract, lists the
// publishable documents in date order and groups them by taxonomy term.
//
// Features:
//
//   - **Header formats**: YAML (---), TOML (+++) and JSON ({) front matter.
//   - **Contract checks**: typed issues with stable codes, never Go errors.
//   - **Body inspection**: links, images, code blocks and generator shortcodes.
//   - **Header index**: an mtime-keyed cache under .folio for fast listings.
//   - **Extensible**: site rules via JSON Schema or a core.MetadataValidator.
//
// Usage:
//
//	svc, err := folio.New("./content",
//		folio.WithIgnore("drafts/**"),
//		folio.WithLogger(logger),
//	)
//
//	report, err := svc.CheckAll(ctx)
//	posts, err := svc.Published(ctx, core.ListOptions{Reverse: true})
package folio
