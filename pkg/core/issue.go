package core

import "fmt"

// Severity ranks an issue. Errors make a document invalid, warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by the content contract and its extensions.
const (
	CodeHeaderMissing      = "header.missing"
	CodeHeaderMalformed    = "header.malformed"
	CodeTitleMissing       = "title.missing"
	CodeTitleType          = "title.type"
	CodeDateMissing        = "date.missing"
	CodeDateInvalid        = "date.invalid"
	CodeLastmodInvalid     = "lastmod.invalid"
	CodeLastmodBeforeDate  = "lastmod.before_date"
	CodeDraftType          = "draft.type"
	CodeSummaryType        = "summary.type"
	CodeSlugInvalid        = "slug.invalid"
	CodeTagsType           = "tags.type"
	CodeTagsEmptyLabel     = "tags.empty_label"
	CodeTagsDuplicate      = "tags.duplicate"
	CodeCategoriesType     = "categories.type"
	CodeCategoriesEmpty    = "categories.empty_label"
	CodeCategoriesDup      = "categories.duplicate"
	CodeSchemaViolation    = "schema.violation"
	CodeRefMissing         = "ref.missing"
	CodeRefNotImage        = "ref.not_image"
	CodeDirectiveMalformed = "directive.malformed"
)

// Issue is a single contract violation found in a document.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field,omitempty"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Field, i.Message)
}

func errorIssue(field, code, msg string) Issue {
	return Issue{Severity: SeverityError, Field: field, Code: code, Message: msg}
}

func warningIssue(field, code, msg string) Issue {
	return Issue{Severity: SeverityWarning, Field: field, Code: code, Message: msg}
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// countSeverity returns the number of errors and warnings in issues.
func countSeverity(issues []Issue) (errs, warns int) {
	for _, i := range issues {
		switch i.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		}
	}
	return errs, warns
}
