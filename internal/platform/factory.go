package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/folio/pkg/adapters/fs"
	"github.com/aretw0/folio/pkg/adapters/markdown"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/schema"
)

// New wires a service over the content tree at path.
//
//	svc, err := folio.New("./content", folio.WithIgnore("drafts/**"))
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := o.repository
	if repo == nil {
		fsRepo := fs.NewRepository(fs.Config{
			Path:         path,
			SystemDir:    o.systemDir,
			Ignore:       o.ignore,
			NoCache:      o.noCache,
			Logger:       logger,
			ErrorHandler: o.errorHandler,
		})
		if err := fsRepo.Initialize(context.Background()); err != nil {
			return nil, err
		}
		repo = fsRepo
	}

	svcOpts := []core.Option{
		core.WithLogger(logger),
		core.WithClock(o.clock),
	}

	if o.inspect {
		svcOpts = append(svcOpts, core.WithInspector(markdown.NewInspector(
			markdown.WithContentDir(path),
			markdown.WithStaticDir(o.staticDir),
			markdown.WithReferenceChecks(o.checkRefs),
			markdown.WithSummaryWords(o.summaryWords),
			markdown.WithLogger(logger),
		)))
	}

	validator := o.validator
	if validator == nil && o.schemaPath != "" {
		v, err := schema.Load(o.schemaPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		logger.Debug("schema loaded", "path", o.schemaPath)
		validator = v
	}
	if validator != nil {
		svcOpts = append(svcOpts, core.WithMetadataValidator(validator))
	}

	return core.NewService(repo, svcOpts...), nil
}
