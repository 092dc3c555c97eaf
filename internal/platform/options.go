package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/folio/pkg/core"
)

// options holds the internal configuration for a folio service.
type options struct {
	repository core.Repository
	logger     *slog.Logger

	systemDir    string
	ignore       []string
	noCache      bool
	errorHandler func(error)

	inspect      bool
	staticDir    string
	checkRefs    bool
	summaryWords int

	schemaPath string
	validator  core.MetadataValidator

	clock func() time.Time
}

// Option defines a functional option for configuring folio.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		inspect: true,
	}
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom repository (e.g. a mock). When set, the
// filesystem adapter is skipped and the path argument is only used to
// resolve body references.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithSystemDir sets the hidden directory holding the header index.
// Defaults to ".folio".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithIgnore excludes content paths matching any of the doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithCache enables or disables the persistent header index. Enabled by default.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.noCache = !enabled
	}
}

// WithWatcherErrorHandler registers a callback for errors raised while watching.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithInspection enables or disables body inspection during checks.
// Enabled by default.
func WithInspection(enabled bool) Option {
	return func(o *options) {
		o.inspect = enabled
	}
}

// WithStaticDir sets where root-relative references such as /img/a.png live.
func WithStaticDir(dir string) Option {
	return func(o *options) {
		o.staticDir = dir
	}
}

// WithReferenceChecks enables existence checks for local links and images.
func WithReferenceChecks(enabled bool) Option {
	return func(o *options) {
		o.checkRefs = enabled
	}
}

// WithSummaryWords caps derived summaries.
func WithSummaryWords(n int) Option {
	return func(o *options) {
		o.summaryWords = n
	}
}

// WithSchema applies the JSON Schema at path to every header.
func WithSchema(path string) Option {
	return func(o *options) {
		o.schemaPath = path
	}
}

// WithMetadataValidator adds a custom header validator. It takes precedence
// over WithSchema.
func WithMetadataValidator(v core.MetadataValidator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithClock overrides the time used to hide future-dated documents.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}
