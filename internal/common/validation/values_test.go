// internal/common/validation/values_test.go
package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"plain address", "address", "42 Elm Street, Springfield", false},
		{"empty value", "address", "   ", true},
		{"overlong value", "address", strings.Repeat("x", 121), true},
		{"valid email", "email", "asha.verma@example.com", false},
		{"email missing domain", "email", "asha.verma@", true},
		{"email is prose", "email", "please use my work address", true},
		{"local phone", "phone", "555-0100", false},
		{"international phone", "phone", "+49 30 901820", false},
		{"phone is prose", "phone", "call me maybe", true},
		{"phone too short", "phone", "12345", true},
		{"iban", "bank_account", "DE89370400440532013000", false},
		{"bank account too short", "bank_account", "12 34", true},
		{"marital status known", "marital_status", "Married", false},
		{"marital status unknown", "marital_status", "complicated", true},
		{"first name free form", "first_name", "Asha", false},
		{"unknown field only gets basic checks", "emergency_contact", "Ravi Verma, +91 98 1234 5678", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FieldValue(tt.field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Values are trimmed before the shape check, so copy-paste whitespace does
// not fail a write.
func TestFieldValue_TrimsBeforeChecking(t *testing.T) {
	assert.NoError(t, FieldValue("email", "  asha.verma@example.com  "))
	assert.NoError(t, FieldValue("phone", " 555-0100 "))
}
