// internal/common/validation/values.go

// Package validation checks HRIS record values before they are written.
// The checks are deliberately loose: the HRIS rejects what it cannot
// store, this layer only catches values that are clearly not the kind of
// data the field holds, so the requester gets a readable reason instead
// of a database error.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
	bankPattern  = regexp.MustCompile(`^[A-Za-z0-9 \-]{6,34}$`)
)

var maritalStatuses = []string{"single", "married", "divorced", "widowed", "registered_partnership"}

// maxValueLength matches the extraction cap, so a value that survived
// extraction is never rejected here for length alone.
const maxValueLength = 120

// FieldValue reports why a value cannot be stored in the named record
// field, or nil when it can. Fields without a specific shape only get the
// emptiness and length checks.
func FieldValue(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("value for %s is empty", field)
	}
	if len(trimmed) > maxValueLength {
		return fmt.Errorf("value for %s exceeds %d characters", field, maxValueLength)
	}

	switch field {
	case "email":
		if !emailPattern.MatchString(trimmed) {
			return fmt.Errorf("%q is not an email address", trimmed)
		}
	case "phone":
		if !phonePattern.MatchString(trimmed) {
			return fmt.Errorf("%q is not a phone number", trimmed)
		}
	case "bank_account":
		if !bankPattern.MatchString(trimmed) {
			return fmt.Errorf("%q is not an account number", trimmed)
		}
	case "marital_status":
		lower := strings.ToLower(trimmed)
		for _, s := range maritalStatuses {
			if lower == s {
				return nil
			}
		}
		return fmt.Errorf("marital status must be one of %s", strings.Join(maritalStatuses, ", "))
	}
	return nil
}
