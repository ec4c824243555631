// internal/intent/router_test.go
package intent

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func entitiesWith(pairs map[models.EntityType]string) models.EntitySet {
	set := models.NewEntitySet()
	for k, v := range pairs {
		set.Set(k, v)
	}
	return set
}

func defaultRouter(t *testing.T) *Router {
	t.Helper()
	router, err := NewRouter(DefaultRules())
	require.NoError(t, err)
	return router
}

// ==========================
// Default Rule Classifications
// ==========================

func TestRouter_DefaultRules(t *testing.T) {
	router := defaultRouter(t)

	tests := []struct {
		name       string
		text       string
		entities   map[models.EntityType]string
		wantIntent models.Intent
		wantRule   string
		minConf    float64
	}{
		{
			name: "employment verification letter",
			text: "Please issue an employment verification letter for employee E123 dated 2024-05-01",
			entities: map[models.EntityType]string{
				models.EntityDocumentType:  "employment_verification",
				models.EntityEmployeeID:    "E123",
				models.EntityEffectiveDate: "2024-05-01",
			},
			wantIntent: models.IntentIssueLetter,
			wantRule:   "issue-letter",
			minConf:    0.9,
		},
		{
			name: "letter request with entities missing",
			text: "Please issue a letter for employee E999",
			entities: map[models.EntityType]string{
				models.EntityEmployeeID: "E999",
			},
			wantIntent: models.IntentIssueLetter,
			wantRule:   "issue-letter",
			minConf:    ConfidenceThreshold,
		},
		{
			name: "payslip request",
			text: "I need my payslip for 2024-05, employee id: E456",
			entities: map[models.EntityType]string{
				models.EntityEmployeeID: "E456",
				models.EntityPayPeriod:  "2024-05",
			},
			wantIntent: models.IntentRetrievePayslip,
			wantRule:   "retrieve-payslip",
			minConf:    0.8,
		},
		{
			name: "record update",
			text: "Hi, please update my home address to 42 Galaxy Way, Springfield. Employee E777.",
			entities: map[models.EntityType]string{
				models.EntityEmployeeID: "E777",
				models.EntityHRISField:  "address",
				models.EntityNewValue:   "42 Galaxy Way, Springfield",
			},
			wantIntent: models.IntentUpdateHRISRecord,
			wantRule:   "update-record",
			minConf:    0.9,
		},
		{
			name: "record lookup",
			text: "What is my bank account on file? Employee E641",
			entities: map[models.EntityType]string{
				models.EntityEmployeeID: "E641",
				models.EntityHRISField:  "bank_account",
			},
			wantIntent: models.IntentQueryHRISRecord,
			wantRule:   "query-record",
			minConf:    0.8,
		},
		{
			name: "policy question",
			text: "What is the maternity leave policy?",
			entities: map[models.EntityType]string{
				models.EntityPolicyTopic: "maternity_leave",
			},
			wantIntent: models.IntentPolicyQuery,
			wantRule:   "policy-question",
			minConf:    0.7,
		},
		{
			name:       "off-topic text",
			text:       "what is the meaning of life",
			entities:   nil,
			wantIntent: models.IntentUnknown,
			wantRule:   "",
			minConf:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := router.Classify(tt.text, entitiesWith(tt.entities))
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.wantRule, got.RuleName)
			assert.GreaterOrEqual(t, got.Confidence, tt.minConf)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestRouter_WeakMatchDegradesToUnknown(t *testing.T) {
	router := defaultRouter(t)

	// One keyword, no phrase pattern, no entities: below the threshold.
	got := router.Classify("please attach the document", models.NewEntitySet())

	assert.Equal(t, models.IntentUnknown, got.Intent)
	assert.Equal(t, "issue-letter", got.RuleName, "closest rule is kept for diagnostics")
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}

func TestRouter_KeywordPlusEntityReachesThreshold(t *testing.T) {
	router := defaultRouter(t)

	entities := entitiesWith(map[models.EntityType]string{
		models.EntityEmployeeID: "E123",
	})
	got := router.Classify("need a certificate", entities)

	assert.Equal(t, models.IntentIssueLetter, got.Intent)
	assert.InDelta(t, ConfidenceThreshold, got.Confidence, 1e-9)
}

// ==========================
// Ranking Contract
// ==========================

func TestRouter_FirstMatchWins(t *testing.T) {
	first := Rule{
		Name:     "first",
		Intent:   models.IntentPolicyQuery,
		Trigger:  0.3,
		Keywords: []string{"alpha"},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`alpha`)},
	}
	second := Rule{
		Name:     "second",
		Intent:   models.IntentRetrievePayslip,
		Trigger:  0.3,
		Keywords: []string{"alpha", "beta"},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`alpha beta`)},
	}
	router, err := NewRouter([]Rule{first, second})
	require.NoError(t, err)

	// The second rule would score higher, but ranking decides.
	got := router.Classify("alpha beta", models.NewEntitySet())

	assert.Equal(t, models.IntentPolicyQuery, got.Intent)
	assert.Equal(t, "first", got.RuleName)
}

func TestRouter_ScoreIsCapped(t *testing.T) {
	rule := Rule{
		Name:     "everything",
		Intent:   models.IntentUpdateHRISRecord,
		Trigger:  0.3,
		Keywords: []string{"update", "change", "correct", "modify", "fix", "amend", "revise", "adjust"},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`update`)},
		SupportingEntities: []models.EntityType{
			models.EntityEmployeeID,
			models.EntityHRISField,
			models.EntityNewValue,
		},
	}
	router, err := NewRouter([]Rule{rule})
	require.NoError(t, err)

	entities := entitiesWith(map[models.EntityType]string{
		models.EntityEmployeeID: "E1000",
		models.EntityHRISField:  "phone",
		models.EntityNewValue:   "555-0100",
	})
	got := router.Classify("update change correct modify fix amend revise adjust", entities)

	assert.Equal(t, models.IntentUpdateHRISRecord, got.Intent)
	assert.Equal(t, 1.0, got.Confidence)
}

// ==========================
// Construction Validation
// ==========================

func TestNewRouter_Validation(t *testing.T) {
	valid := Rule{
		Name:     "ok",
		Intent:   models.IntentPolicyQuery,
		Trigger:  0.3,
		Keywords: []string{"policy"},
	}

	tests := []struct {
		name  string
		rules []Rule
	}{
		{name: "no rules", rules: nil},
		{name: "empty name", rules: []Rule{{Intent: models.IntentPolicyQuery, Trigger: 0.3, Keywords: []string{"x"}}}},
		{name: "duplicate name", rules: []Rule{valid, valid}},
		{
			name:  "unknown is not a rule target",
			rules: []Rule{{Name: "bad", Intent: models.IntentUnknown, Trigger: 0.3, Keywords: []string{"x"}}},
		},
		{
			name:  "zero trigger",
			rules: []Rule{{Name: "bad", Intent: models.IntentPolicyQuery, Keywords: []string{"x"}}},
		},
		{
			name:  "trigger above cap",
			rules: []Rule{{Name: "bad", Intent: models.IntentPolicyQuery, Trigger: 1.5, Keywords: []string{"x"}}},
		},
		{
			name:  "no keywords or patterns",
			rules: []Rule{{Name: "bad", Intent: models.IntentPolicyQuery, Trigger: 0.3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouter(tt.rules)
			require.Error(t, err)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeConfigurationInvalid, stdErr.Code)
		})
	}
}
