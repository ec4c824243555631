// internal/extraction/extractor_test.go
package extraction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

type stubRecognizer struct {
	name    string
	matches []Match
}

func (s *stubRecognizer) Name() string { return s.name }

func (s *stubRecognizer) Recognize(_ string) []Match { return s.matches }

// ==========================
// End-to-End Request Texts
// ==========================

func TestExtractor_RequestTexts(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "letter request with id and date",
			text: "Please issue an employment verification letter for employee E123 dated 2024-05-01",
			want: map[string]string{
				"employee_id":    "E123",
				"document_type":  "employment_verification",
				"effective_date": "2024-05-01",
			},
		},
		{
			name: "off-topic text yields empty set",
			text: "what is the meaning of life",
			want: map[string]string{},
		},
		{
			name: "letter request missing type and date",
			text: "Please issue a letter for employee E999",
			want: map[string]string{
				"employee_id": "E999",
			},
		},
		{
			name: "payslip request",
			text: "I need my payslip for 2024-05, employee id: E456",
			want: map[string]string{
				"employee_id": "E456",
				"pay_period":  "2024-05",
			},
		},
		{
			name: "record update request",
			text: "Hi, please update my home address to 42 Galaxy Way, Springfield. Employee E777.",
			want: map[string]string{
				"employee_id": "E777",
				"hris_field":  "address",
				"new_value":   "42 Galaxy Way, Springfield",
			},
		},
		{
			name: "policy question",
			text: "What is the maternity leave policy?",
			want: map[string]string{
				"policy_topic": "maternity_leave",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			assert.Equal(t, tt.want, set.AsMap())
		})
	}
}

// ==========================
// Individual Recognizers
// ==========================

func TestExtractor_EmployeeIDPhrasings(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name   string
		text   string
		wantID string
		found  bool
	}{
		{name: "bare uppercase id", text: "E123 needs a new badge", wantID: "E123", found: true},
		{name: "employee prefix", text: "letter for employee E123 please", wantID: "E123", found: true},
		{name: "employee id colon", text: "employee id: E45678", wantID: "E45678", found: true},
		{name: "lowercase after employee prefix", text: "for employee e123", wantID: "E123", found: true},
		{name: "bare lowercase not claimed", text: "see e123 for details", found: false},
		{name: "too few digits", text: "employee E12", found: false},
		{name: "no id anywhere", text: "please help me out", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			got, ok := set.Get(models.EntityEmployeeID)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, got)
			}
		})
	}
}

func TestExtractor_DateFormats(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name     string
		text     string
		wantDate string
		found    bool
	}{
		{name: "iso", text: "dated 2024-05-01", wantDate: "2024-05-01", found: true},
		{name: "month day year", text: "effective May 1, 2024", wantDate: "2024-05-01", found: true},
		{name: "month day year ordinal", text: "effective September 3rd, 2024", wantDate: "2024-09-03", found: true},
		{name: "day month year", text: "effective 1st May 2024", wantDate: "2024-05-01", found: true},
		{name: "day of month year", text: "starting 12th of August 2024", wantDate: "2024-08-12", found: true},
		{name: "slash month first", text: "starting 01/05/2024", wantDate: "2024-01-05", found: true},
		{name: "slash day first when unambiguous", text: "starting 13/05/2024", wantDate: "2024-05-13", found: true},
		{name: "out of range month rejected", text: "dated 2024-13-45", found: false},
		{name: "no date", text: "as soon as possible", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			got, ok := set.Get(models.EntityEffectiveDate)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantDate, got)
			}
		})
	}
}

func TestExtractor_PayPeriods(t *testing.T) {
	// Clock is pinned to 2024-06-15 so relative phrasings are stable.
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name       string
		text       string
		wantPeriod string
		found      bool
	}{
		{name: "numeric period", text: "payslip for 2024-05 please", wantPeriod: "2024-05", found: true},
		{name: "month name period", text: "payslip for May 2024", wantPeriod: "2024-05", found: true},
		{name: "last month", text: "send me the payslip for last month", wantPeriod: "2024-05", found: true},
		{name: "this month", text: "payslip for this month", wantPeriod: "2024-06", found: true},
		{name: "full date is not a period", text: "letter dated 2024-05-01", found: false},
		{name: "day month year is not a period", text: "effective 1st May 2024", found: false},
		{name: "out of range month rejected", text: "payslip for 2024-19", found: false},
		{name: "no period", text: "I need my payslip", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			got, ok := set.Get(models.EntityPayPeriod)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantPeriod, got)
			}
		})
	}
}

func TestExtractor_RecordUpdatePhrases(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name      string
		text      string
		wantField string
		wantValue string
		hasValue  bool
		found     bool
	}{
		{
			name:      "update phone number",
			text:      "Please update my phone number to 555-0147.",
			wantField: "phone",
			wantValue: "555-0147",
			hasValue:  true,
			found:     true,
		},
		{
			name:      "change address",
			text:      "change my home address to 9 Elm Road",
			wantField: "address",
			wantValue: "9 Elm Road",
			hasValue:  true,
			found:     true,
		},
		{
			name:      "correct last name",
			text:      "Please correct my last name to Smith-Jones",
			wantField: "last_name",
			wantValue: "Smith-Jones",
			hasValue:  true,
			found:     true,
		},
		{
			name:      "set email address",
			text:      "set my email address to jane.doe@example.org",
			wantField: "email",
			wantValue: "jane.doe@example.org",
			hasValue:  true,
			found:     true,
		},
		{
			name:      "lookup phrasing captures field only",
			text:      "What is my bank account on file?",
			wantField: "bank_account",
			found:     true,
		},
		{
			name:  "no recognizable field",
			text:  "update my star sign to Libra",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			field, ok := set.Get(models.EntityHRISField)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantField, field)
			}
			value, ok := set.Get(models.EntityNewValue)
			require.Equal(t, tt.hasValue, ok)
			if tt.hasValue {
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestExtractor_PolicyTopics(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name      string
		text      string
		wantTopic string
		found     bool
	}{
		{name: "known topic", text: "What is the maternity leave policy?", wantTopic: "maternity_leave", found: true},
		{name: "policy on known topic", text: "Can you share the policy on remote work?", wantTopic: "remote_work", found: true},
		{name: "specific beats generic leave", text: "sick leave policy please", wantTopic: "sick_leave", found: true},
		{name: "unlisted topic via policy on phrase", text: "Please point me to the policy on relocation.", wantTopic: "relocation", found: true},
		{name: "topic without policy keyword not claimed", text: "How many days of maternity leave do I get?", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			got, ok := set.Get(models.EntityPolicyTopic)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantTopic, got)
			}
		})
	}
}

// ==========================
// Extraction Contract
// ==========================

func TestExtractor_FirstRecognizerWins(t *testing.T) {
	first := &stubRecognizer{
		name:    "first",
		matches: []Match{{Type: models.EntityEmployeeID, Value: "E111"}},
	}
	second := &stubRecognizer{
		name: "second",
		matches: []Match{
			{Type: models.EntityEmployeeID, Value: "E222"},
			{Type: models.EntityPolicyTopic, Value: "overtime"},
		},
	}

	set := newExtractor(first, second).Extract("anything")

	got, ok := set.Get(models.EntityEmployeeID)
	require.True(t, ok)
	assert.Equal(t, "E111", got, "first registered recognizer keeps the claim")

	topic, ok := set.Get(models.EntityPolicyTopic)
	require.True(t, ok)
	assert.Equal(t, "overtime", topic, "unclaimed types from later recognizers still land")
}

func TestExtractor_TotalOnAnyInput(t *testing.T) {
	extractor := NewExtractor(fixedClock())

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   \t\n  "},
		{name: "punctuation soup", text: "?!?!... ;;; ###"},
		{name: "control bytes", text: "\x00\x01\x02 please help \x7f"},
		{name: "very long input", text: strings.Repeat("lorem ipsum ", 100000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := extractor.Extract(tt.text)
			assert.Equal(t, 0, set.Len())
		})
	}
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkExtract(b *testing.B) {
	extractor := NewExtractor(fixedClock())
	text := "Please issue an employment verification letter for employee E123 dated 2024-05-01"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		extractor.Extract(text)
	}
}
