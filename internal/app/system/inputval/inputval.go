// Package inputval validates user-supplied input before it reaches a store.
//
// All functions are pure: no I/O, no logging, no side effects. Validators
// return a *FieldError naming the first violated rule so forms can highlight
// a single field, and nil when the input is acceptable. Rule order is fixed
// (name, description length, category, members required, then the remaining
// presence checks) so repeated submissions surface errors deterministically.
package inputval

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// DefaultDescriptionMinChars is the minimum description length enforced at
// create and edit time. Configurable via ProjectRules; the 100-character
// floor keeps drive-by one-liners out of the browse page.
const DefaultDescriptionMinChars = 100

// FieldError reports the first validation rule an input violated.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProjectInput carries the author-editable fields of a project submission.
// Immutable fields (id, owner email, created-at) are deliberately absent:
// edits can never touch them, so they are never validated here.
type ProjectInput struct {
	Name            string
	Description     string
	Category        string
	TechStack       string
	Course          string
	Year            string
	MembersRequired int
	LinkedIn        string
}

// ProjectRules holds the configurable validation thresholds.
type ProjectRules struct {
	DescriptionMinChars int
}

// DefaultProjectRules returns the standard rule set.
func DefaultProjectRules() ProjectRules {
	return ProjectRules{DescriptionMinChars: DefaultDescriptionMinChars}
}

// ValidateNewProject checks a submission for publishing. The first violated
// rule wins; order is stable across calls.
func ValidateNewProject(in ProjectInput, rules ProjectRules) *FieldError {
	return validateProject(in, rules)
}

// ValidateProjectEdit checks an edit payload. Edits are held to the same
// rules as new submissions.
func ValidateProjectEdit(in ProjectInput, rules ProjectRules) *FieldError {
	return validateProject(in, rules)
}

func validateProject(in ProjectInput, rules ProjectRules) *FieldError {
	min := rules.DescriptionMinChars
	if min <= 0 {
		min = DefaultDescriptionMinChars
	}

	if strings.TrimSpace(in.Name) == "" {
		return &FieldError{Field: "name", Reason: "project name is required"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < min {
		return &FieldError{
			Field:  "description",
			Reason: fmt.Sprintf("description must be at least %d characters", min),
		}
	}
	if strings.TrimSpace(in.Category) == "" {
		return &FieldError{Field: "category", Reason: "category is required"}
	}
	if in.MembersRequired < 1 {
		return &FieldError{Field: "members_required", Reason: "at least one member is required"}
	}
	if strings.TrimSpace(in.Course) == "" {
		return &FieldError{Field: "course", Reason: "course is required"}
	}
	if strings.TrimSpace(in.Year) == "" {
		return &FieldError{Field: "year", Reason: "year is required"}
	}
	if strings.TrimSpace(in.TechStack) == "" {
		return &FieldError{Field: "tech_stack", Reason: "tech stack is required"}
	}
	return nil
}

// IsValidEmail reports whether s parses as a bare RFC 5322 address.
// Display-name forms ("Name <a@b>") are rejected; sign-up wants the address
// itself, not a mailbox spec.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
