package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-slug"
)

// Service handles checking and indexing of content documents.
type Service struct {
	repo      Repository
	logger    *slog.Logger
	inspector Inspector
	validator MetadataValidator
	now       func() time.Time

	mu         sync.RWMutex
	lastReport *ReportSummary
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInspector enables body inspection during checks.
func WithInspector(in Inspector) Option {
	return func(s *Service) { s.inspector = in }
}

// WithMetadataValidator adds site-specific header rules to checks.
func WithMetadataValidator(v MetadataValidator) Option {
	return func(s *Service) { s.validator = v }
}

// WithClock overrides the time source used to hide future-dated documents.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// Result is the outcome of checking one document.
type Result struct {
	ID          string      `json:"id"`
	Path        string      `json:"path"`
	FrontMatter FrontMatter `json:"front_matter"`
	Issues      []Issue     `json:"issues,omitempty"`
	Inspection  *Inspection `json:"inspection,omitempty"`
}

// Valid reports whether the document satisfies the contract.
func (r Result) Valid() bool {
	return !HasErrors(r.Issues)
}

// Report aggregates the results of a full check.
type Report struct {
	Results  []Result      `json:"results"`
	Summary  ReportSummary `json:"summary"`
	Duration time.Duration `json:"duration"`
}

// ReportSummary holds the counters of a Report.
type ReportSummary struct {
	Documents int       `json:"documents"`
	Invalid   int       `json:"invalid"`
	Drafts    int       `json:"drafts"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
	CheckedAt time.Time `json:"checked_at"`
}

// OK reports whether the report passes. In strict mode warnings fail too.
func (r Report) OK(strict bool) bool {
	if r.Summary.Errors > 0 {
		return false
	}
	return !strict || r.Summary.Warnings == 0
}

// Check validates a single document.
func (s *Service) Check(ctx context.Context, id string) (Result, error) {
	if id == "" {
		return Result{}, ErrEmptyID
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return s.check(doc), nil
}

// CheckAll validates every document in the repository.
func (s *Service) CheckAll(ctx context.Context) (Report, error) {
	start := s.now()

	docs, err := s.repo.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list documents: %w", err)
	}
	return s.report(ctx, start, docs)
}

// CheckIDs validates the named documents and aggregates them like CheckAll.
func (s *Service) CheckIDs(ctx context.Context, ids []string) (Report, error) {
	start := s.now()

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return Report{}, ErrEmptyID
		}
		doc, err := s.repo.Get(ctx, id)
		if err != nil {
			return Report{}, err
		}
		docs = append(docs, doc)
	}
	return s.report(ctx, start, docs)
}

// Stats returns the summary of the last report, if any check ran.
func (s *Service) Stats() (ReportSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return ReportSummary{}, false
	}
	return *s.lastReport, true
}

func (s *Service) report(ctx context.Context, start time.Time, docs []Document) (Report, error) {
	report := Report{Results: make([]Result, 0, len(docs))}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		res := s.check(doc)
		report.Results = append(report.Results, res)

		errs, warns := countSeverity(res.Issues)
		report.Summary.Errors += errs
		report.Summary.Warnings += warns
		if errs > 0 {
			report.Summary.Invalid++
		}
		if res.FrontMatter.Draft {
			report.Summary.Drafts++
		}
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].ID < report.Results[j].ID
	})

	report.Summary.Documents = len(report.Results)
	report.Summary.CheckedAt = s.now()
	report.Duration = report.Summary.CheckedAt.Sub(start)

	s.mu.Lock()
	summary := report.Summary
	s.lastReport = &summary
	s.mu.Unlock()

	s.logger.Debug("check completed",
		"documents", report.Summary.Documents,
		"invalid", report.Summary.Invalid,
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
	)
	return report, nil
}

func (s *Service) check(doc Document) Result {
	res := Result{
		ID:          doc.ID,
		Path:        doc.Path,
		FrontMatter: doc.FrontMatter(),
	}

	issues := s.headerIssues(doc)

	if doc.ParseErr == nil && s.inspector != nil {
		in, err := s.inspector.Inspect(doc)
		if err != nil {
			s.logger.Warn("body inspection failed", "id", doc.ID, "error", err)
		} else {
			issues = append(issues, in.Issues...)
			in.Issues = nil
			res.Inspection = &in
		}
	}

	sortIssues(issues)
	res.Issues = issues
	return res
}

// headerIssues applies the contract and the site's metadata rules, both of
// which need only the header.
func (s *Service) headerIssues(doc Document) []Issue {
	issues := Check(doc)
	if doc.ParseErr == nil && doc.Format != FormatNone && s.validator != nil {
		issues = append(issues, s.validator.Validate(doc.Metadata)...)
	}
	return issues
}

// Document retrieves a document regardless of its draft state.
func (s *Service) Document(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, ErrEmptyID
	}
	return s.repo.Get(ctx, id)
}

// ListOptions filters published listings.
type ListOptions struct {
	Tag           string
	Category      string
	IncludeDrafts bool
	IncludeFuture bool
	// Reverse orders newest first.
	Reverse bool
}

// Entry is a document as it appears in a listing.
type Entry struct {
	ID          string      `json:"id"`
	Path        string      `json:"path"`
	FrontMatter FrontMatter `json:"front_matter"`
}

// Published returns the valid, publishable documents ordered by date.
// Documents that fail the contract are left out of the listing.
func (s *Service) Published(ctx context.Context, opts ListOptions) ([]Entry, error) {
	docs, err := s.repo.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	now := s.now()
	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		if HasErrors(s.headerIssues(doc)) {
			s.logger.Debug("skipping invalid document", "id", doc.ID)
			continue
		}
		fm := doc.FrontMatter()
		if !opts.IncludeDrafts && !fm.Publishable() {
			continue
		}
		if !opts.IncludeFuture && fm.Date.After(now) {
			continue
		}
		if opts.Tag != "" && !matchTerm(fm.Tags, opts.Tag) {
			continue
		}
		if opts.Category != "" && !matchTerm(fm.Categories, opts.Category) {
			continue
		}
		entries = append(entries, Entry{ID: doc.ID, Path: doc.Path, FrontMatter: fm})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.FrontMatter.Date.Equal(b.FrontMatter.Date) {
			if opts.Reverse {
				return a.FrontMatter.Date.After(b.FrontMatter.Date)
			}
			return a.FrontMatter.Date.Before(b.FrontMatter.Date)
		}
		return a.ID < b.ID
	})
	return entries, nil
}

// TaxonomyKind names a grouping of documents by label.
type TaxonomyKind string

const (
	TaxonomyTags       TaxonomyKind = "tags"
	TaxonomyCategories TaxonomyKind = "categories"
)

// ParseTaxonomyKind accepts the plural or singular form of a taxonomy name.
func ParseTaxonomyKind(name string) (TaxonomyKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tags", "tag":
		return TaxonomyTags, nil
	case "categories", "category":
		return TaxonomyCategories, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTaxonomy, name)
	}
}

// Term is one label of a taxonomy and the documents filed under it.
type Term struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Documents []string `json:"documents"`
}

// Taxonomy groups published documents by tag or category.
type Taxonomy struct {
	Kind  TaxonomyKind `json:"kind"`
	Terms []Term       `json:"terms"`
}

// Taxonomy builds the term index for kind. Labels that normalise to the same
// slug share a term, named after their earliest use.
func (s *Service) Taxonomy(ctx context.Context, kind TaxonomyKind, opts ListOptions) (Taxonomy, error) {
	if kind != TaxonomyTags && kind != TaxonomyCategories {
		return Taxonomy{}, fmt.Errorf("%w: %q", ErrUnknownTaxonomy, kind)
	}

	opts.Tag, opts.Category, opts.Reverse = "", "", false
	entries, err := s.Published(ctx, opts)
	if err != nil {
		return Taxonomy{}, err
	}

	bySlug := make(map[string]*Term)
	var order []string
	for _, e := range entries {
		labels := e.FrontMatter.Tags
		if kind == TaxonomyCategories {
			labels = e.FrontMatter.Categories
		}
		for _, label := range labels {
			key := TermSlug(label)
			term, ok := bySlug[key]
			if !ok {
				term = &Term{Name: label, Slug: key}
				bySlug[key] = term
				order = append(order, key)
			}
			if n := len(term.Documents); n > 0 && term.Documents[n-1] == e.ID {
				continue
			}
			term.Documents = append(term.Documents, e.ID)
		}
	}

	tax := Taxonomy{Kind: kind, Terms: make([]Term, 0, len(order))}
	for _, key := range order {
		tax.Terms = append(tax.Terms, *bySlug[key])
	}
	sort.Slice(tax.Terms, func(i, j int) bool {
		return strings.ToLower(tax.Terms[i].Name) < strings.ToLower(tax.Terms[j].Name)
	})
	return tax, nil
}

// TermSlug returns the URL slug of a taxonomy label.
func TermSlug(label string) string {
	label = strings.TrimSpace(label)
	if s, err := slug.Normalize(label); err == nil && s != "" {
		return s
	}
	return strings.ToLower(label)
}

func matchTerm(set LabelSet, term string) bool {
	if set.Has(term) {
		return true
	}
	want := TermSlug(term)
	for _, l := range set {
		if TermSlug(l) == want {
			return true
		}
	}
	return false
}

// NormalizeResult describes the canonical rendering of a document.
type NormalizeResult struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
	Output  []byte `json:"-"`
}

// Normalize renders the document with its header in canonical form: labels
// trimmed and deduplicated, keys in stable order. When write is true and the
// rendering differs from the stored bytes, the document is saved.
func (s *Service) Normalize(ctx context.Context, id string, write bool) (NormalizeResult, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return NormalizeResult{}, err
	}
	if doc.ParseErr != nil {
		return NormalizeResult{}, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, doc.ParseErr)
	}
	if doc.Format == FormatNone {
		return NormalizeResult{}, fmt.Errorf("%s: %w", id, ErrNoFrontMatter)
	}

	raw, err := s.repo.Raw(ctx, id)
	if err != nil {
		return NormalizeResult{}, err
	}

	doc.Metadata = CanonicalMetadata(doc.Metadata)
	out, err := s.repo.Encode(doc)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("failed to encode %s: %w", id, err)
	}

	res := NormalizeResult{ID: id, Changed: !bytes.Equal(raw, out), Output: out}
	if write && res.Changed {
		if err := s.repo.Save(ctx, doc); err != nil {
			return NormalizeResult{}, fmt.Errorf("failed to save %s: %w", id, err)
		}
		s.logger.Debug("document normalized", "id", id)
	}
	return res, nil
}

// CanonicalMetadata returns a copy of meta with well-formed label lists
// trimmed and deduplicated. Malformed lists are left untouched so that they
// keep failing the contract.
func CanonicalMetadata(meta Metadata) Metadata {
	out := make(Metadata, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	for _, key := range []string{KeyTags, KeyCategories} {
		labels, ok := stringList(out[key])
		if !ok {
			continue
		}
		set := NewLabelSet(labels...)
		list := make([]any, 0, len(set))
		for _, l := range set {
			list = append(list, l)
		}
		out[key] = list
	}
	return out
}

func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, pattern)
}
