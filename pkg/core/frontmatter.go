package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Recognised header keys.
const (
	KeyTitle       = "title"
	KeyDate        = "date"
	KeyLastmod     = "lastmod"
	KeyDraft       = "draft"
	KeyTags        = "tags"
	KeyCategories  = "categories"
	KeySummary     = "summary"
	KeyDescription = "description"
	KeySlug        = "slug"
)

// FrontMatter is the typed metadata record of a content document.
type FrontMatter struct {
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Lastmod    time.Time `json:"lastmod,omitzero"`
	Draft      bool      `json:"draft"`
	Tags       LabelSet  `json:"tags,omitempty"`
	Categories LabelSet  `json:"categories,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Slug       string    `json:"slug,omitempty"`
}

// Publishable reports whether the document may appear in published listings.
// A document without a draft flag is publishable.
func (f FrontMatter) Publishable() bool {
	return !f.Draft
}

// Equal reports whether two records carry the same metadata.
// Label sets are compared as sets and timestamps by instant.
func (f FrontMatter) Equal(o FrontMatter) bool {
	return f.Title == o.Title &&
		f.Date.Equal(o.Date) &&
		f.Lastmod.Equal(o.Lastmod) &&
		f.Draft == o.Draft &&
		f.Tags.Equal(o.Tags) &&
		f.Categories.Equal(o.Categories) &&
		f.Summary == o.Summary &&
		f.Slug == o.Slug
}

// DecodeFrontMatter builds the typed record from raw header metadata.
// Values of the wrong type are left at their zero value and reported.
// Missing required fields are not reported here; see Check.
func DecodeFrontMatter(meta Metadata) (FrontMatter, []Issue) {
	var (
		fm     FrontMatter
		issues []Issue
	)

	if v, ok := meta[KeyTitle]; ok && v != nil {
		if s, ok := v.(string); ok {
			fm.Title = s
		} else {
			issues = append(issues, errorIssue(KeyTitle, CodeTitleType, fmt.Sprintf("title must be text, got %T", v)))
		}
	}

	if v, ok := meta[KeyDate]; ok && v != nil {
		if t, ok := parseTime(v); ok {
			fm.Date = t
		} else {
			issues = append(issues, errorIssue(KeyDate, CodeDateInvalid, fmt.Sprintf("cannot parse date %v", v)))
		}
	}

	if v, ok := meta[KeyLastmod]; ok && v != nil {
		if t, ok := parseTime(v); ok {
			fm.Lastmod = t
		} else {
			issues = append(issues, errorIssue(KeyLastmod, CodeLastmodInvalid, fmt.Sprintf("cannot parse lastmod %v", v)))
		}
	}

	if v, ok := meta[KeyDraft]; ok && v != nil {
		if b, ok := v.(bool); ok {
			fm.Draft = b
		} else {
			issues = append(issues, errorIssue(KeyDraft, CodeDraftType, fmt.Sprintf("draft must be a boolean, got %T", v)))
		}
	}

	var labelIssues []Issue
	fm.Tags, labelIssues = decodeLabels(meta, KeyTags, CodeTagsType, CodeTagsEmptyLabel, CodeTagsDuplicate)
	issues = append(issues, labelIssues...)
	fm.Categories, labelIssues = decodeLabels(meta, KeyCategories, CodeCategoriesType, CodeCategoriesEmpty, CodeCategoriesDup)
	issues = append(issues, labelIssues...)

	for _, key := range []string{KeySummary, KeyDescription} {
		v, ok := meta[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			issues = append(issues, errorIssue(key, CodeSummaryType, fmt.Sprintf("%s must be text, got %T", key, v)))
			continue
		}
		if fm.Summary == "" {
			fm.Summary = s
		}
	}

	if v, ok := meta[KeySlug]; ok && v != nil {
		if s, ok := v.(string); ok {
			fm.Slug = s
		} else {
			issues = append(issues, errorIssue(KeySlug, CodeSlugInvalid, fmt.Sprintf("slug must be text, got %T", v)))
		}
	}

	return fm, issues
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		parsed, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func decodeLabels(meta Metadata, key, typeCode, emptyCode, dupCode string) (LabelSet, []Issue) {
	v, ok := meta[key]
	if !ok || v == nil {
		return nil, nil
	}

	var (
		raw    []string
		issues []Issue
	)
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				issues = append(issues, errorIssue(key, typeCode, fmt.Sprintf("%s must be a list of text labels, found %T", key, item)))
				continue
			}
			raw = append(raw, s)
		}
	default:
		return nil, []Issue{errorIssue(key, typeCode, fmt.Sprintf("%s must be a list of text labels, got %T", key, v))}
	}

	var set LabelSet
	for _, label := range raw {
		switch {
		case strings.TrimSpace(label) == "":
			issues = append(issues, errorIssue(key, emptyCode, fmt.Sprintf("%s contains an empty label", key)))
		case set.Has(label):
			issues = append(issues, warningIssue(key, dupCode, fmt.Sprintf("label %q is listed more than once", strings.TrimSpace(label))))
		default:
			set = set.Add(label)
		}
	}
	return set, issues
}
