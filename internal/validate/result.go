// Package validate implements the pure data-integrity checks of the
// application core: per-entity field validation, the two-way milestone/task
// completion invariant, and cycle detection over the derived dependency
// graph.
//
// Nothing in this package touches storage and nothing returns a Go error for
// well-typed input: every check is a query that produces a Result. Callers
// decide whether errors block a commit; warnings are advisory.
package validate

import "fmt"

// Severity classifies an issue.
type Severity string

// Severity constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single validation finding.
// Field is a dotted path into the validated entity, e.g. "milestone[2].title".
type Issue struct {
	Field    string
	Message  string
	Severity Severity
}

// Result aggregates the findings of one check. Errors and warnings are kept
// separate; a result is valid as long as it carries no errors.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// IsValid reports whether the result carries no errors.
// Warnings do not affect validity.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Result) addError(field, message string) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: message, Severity: SeverityError})
}

func (r *Result) addWarning(field, message string) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message, Severity: SeverityWarning})
}

// merge appends other's findings to r, prefixing every field path.
// An empty prefix merges the findings unchanged.
func (r *Result) merge(prefix string, other Result) {
	for _, issue := range other.Errors {
		r.Errors = append(r.Errors, prefixIssue(prefix, issue))
	}

	for _, issue := range other.Warnings {
		r.Warnings = append(r.Warnings, prefixIssue(prefix, issue))
	}
}

func prefixIssue(prefix string, issue Issue) Issue {
	if prefix != "" {
		issue.Field = fmt.Sprintf("%s.%s", prefix, issue.Field)
	}

	return issue
}
