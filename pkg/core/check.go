package core

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// Check applies the content document contract to doc and returns every
// violation found. A nil result means the document is valid.
func Check(doc Document) []Issue {
	if doc.ParseErr != nil {
		return []Issue{errorIssue("", CodeHeaderMalformed, doc.ParseErr.Error())}
	}
	if doc.Format == FormatNone || doc.Format == "" {
		return []Issue{errorIssue("", CodeHeaderMissing, "document has no metadata header")}
	}

	fm, issues := DecodeFrontMatter(doc.Metadata)

	flagged := make(map[string]bool, len(issues))
	for _, i := range issues {
		flagged[i.Field] = true
	}

	for _, i := range validateRecord(fm) {
		if flagged[i.Field] {
			continue
		}
		issues = append(issues, i)
	}

	sortIssues(issues)
	return issues
}

func validateRecord(fm FrontMatter) []Issue {
	err := validation.ValidateStruct(&fm,
		validation.Field(&fm.Title,
			validation.Required.ErrorObject(validation.NewError(CodeTitleMissing, "title is required")),
			validation.By(notBlank(CodeTitleMissing, "title is blank")),
		),
		validation.Field(&fm.Date,
			validation.Required.ErrorObject(validation.NewError(CodeDateMissing, "date is required")),
		),
		validation.Field(&fm.Lastmod,
			validation.When(!fm.Lastmod.IsZero() && !fm.Date.IsZero(),
				validation.By(func(any) error {
					if fm.Lastmod.Before(fm.Date) {
						return validation.NewError(CodeLastmodBeforeDate, "lastmod is earlier than date")
					}
					return nil
				}),
			),
		),
		validation.Field(&fm.Slug,
			validation.When(fm.Slug != "", validation.By(func(any) error {
				if !slug.IsValid(fm.Slug) {
					return validation.NewError(CodeSlugInvalid, "slug contains characters that are not URL safe")
				}
				return nil
			})),
		),
	)
	return issuesFromValidation(err)
}

func notBlank(code, msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != "" && strings.TrimSpace(s) == "" {
			return validation.NewError(code, msg)
		}
		return nil
	}
}

func issuesFromValidation(err error) []Issue {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []Issue{errorIssue("", CodeHeaderMalformed, err.Error())}
	}

	issues := make([]Issue, 0, len(errs))
	for field, fieldErr := range errs {
		code := field + ".invalid"
		var verr validation.Error
		if errors.As(fieldErr, &verr) {
			code = verr.Code()
		}
		issues = append(issues, errorIssue(field, code, fieldErr.Error()))
	}
	return issues
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		if issues[i].Field != issues[j].Field {
			return issues[i].Field < issues[j].Field
		}
		return issues[i].Code < issues[j].Code
	})
}
