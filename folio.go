package folio

import (
	"log/slog"
	"time"

	"github.com/aretw0/folio/internal/platform"
	"github.com/aretw0/folio/pkg/core"
)

// --- Configuration ---

// Option defines a functional option for configuring folio.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSystemDir sets the hidden directory holding the header index (default ".folio").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithIgnore excludes content paths matching any of the doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// WithCache enables or disables the persistent header index.
func WithCache(enabled bool) Option {
	return platform.WithCache(enabled)
}

// WithWatcherErrorHandler registers a callback for errors raised while watching.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithInspection enables or disables body inspection during checks.
func WithInspection(enabled bool) Option {
	return platform.WithInspection(enabled)
}

// WithStaticDir sets where root-relative references resolve.
func WithStaticDir(dir string) Option {
	return platform.WithStaticDir(dir)
}

// WithReferenceChecks enables existence checks for local links and images.
func WithReferenceChecks(enabled bool) Option {
	return platform.WithReferenceChecks(enabled)
}

// WithSummaryWords caps derived summaries.
func WithSummaryWords(n int) Option {
	return platform.WithSummaryWords(n)
}

// WithSchema applies a JSON Schema file to every header.
func WithSchema(path string) Option {
	return platform.WithSchema(path)
}

// WithMetadataValidator adds a custom header validator.
func WithMetadataValidator(v core.MetadataValidator) Option {
	return platform.WithMetadataValidator(v)
}

// WithClock overrides the time used to hide future-dated documents.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// --- Factory ---

// New creates a service over the content tree at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// --- Utils ---

// FindSiteRoot looks upwards from startDir for a folio config file, the
// .folio directory or a git checkout.
func FindSiteRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
