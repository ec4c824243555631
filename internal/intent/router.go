// internal/intent/router.go
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/models"
)

// ==========================
// Scoring
// ==========================

// ConfidenceThreshold is the minimum winning score for an actionable
// classification. A rule that matches below it degrades the decision to
// UNKNOWN, which ends in human review instead of an automated action.
const ConfidenceThreshold = 0.4

const (
	keywordBaseScore  = 0.3
	extraKeywordScore = 0.1
	patternScore      = 0.4
	entityScore       = 0.1
	maxScore          = 1.0
)

// ==========================
// Rules
// ==========================

// Rule scores one intent against request text. Scoring is additive: the
// first keyword hit contributes keywordBaseScore and each further hit
// extraKeywordScore, any pattern hit contributes patternScore once, and
// each supporting entity present contributes entityScore, capped at
// maxScore. The rule matches when the score reaches Trigger.
type Rule struct {
	Name               string
	Intent             models.Intent
	Keywords           []string
	Patterns           []*regexp.Regexp
	SupportingEntities []models.EntityType
	Trigger            float64
}

func (r Rule) score(lower string, entities models.EntitySet) float64 {
	var score float64

	hits := 0
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits > 0 {
		score = keywordBaseScore + extraKeywordScore*float64(hits-1)
	}

	for _, p := range r.Patterns {
		if p.MatchString(lower) {
			score += patternScore
			break
		}
	}

	for _, t := range r.SupportingEntities {
		if entities.Has(t) {
			score += entityScore
		}
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// ==========================
// Router
// ==========================

// Router classifies request text into the closed intent set. Rules are
// evaluated in slice order and the first rule whose score reaches its
// trigger decides the request; later rules are not consulted even if they
// would score higher. Rule order at construction is therefore the ranking.
//
// The router is pure: no I/O, no clock, safe for concurrent use.
type Router struct {
	rules []Rule
}

// NewRouter validates the rule set and builds a router. Rule problems are
// configuration errors and should be fatal at startup.
func NewRouter(rules []Rule) (*Router, error) {
	if len(rules) == 0 {
		return nil, errors.NewConfigurationError("intent router needs at least one rule")
	}
	seen := make(map[string]bool, len(rules))
	for i, rule := range rules {
		if rule.Name == "" {
			return nil, errors.NewConfigurationError(fmt.Sprintf("rule %d has no name", i))
		}
		if seen[rule.Name] {
			return nil, errors.NewConfigurationError(fmt.Sprintf("duplicate rule name %q", rule.Name))
		}
		seen[rule.Name] = true
		if !isActionable(rule.Intent) {
			return nil, errors.NewConfigurationError(fmt.Sprintf("rule %q targets non-actionable intent %q", rule.Name, rule.Intent))
		}
		if rule.Trigger <= 0 || rule.Trigger > maxScore {
			return nil, errors.NewConfigurationError(fmt.Sprintf("rule %q trigger %.2f out of range", rule.Name, rule.Trigger))
		}
		if len(rule.Keywords) == 0 && len(rule.Patterns) == 0 {
			return nil, errors.NewConfigurationError(fmt.Sprintf("rule %q has neither keywords nor patterns", rule.Name))
		}
	}
	return &Router{rules: rules}, nil
}

func isActionable(intent models.Intent) bool {
	for _, a := range models.ActionableIntents {
		if intent == a {
			return true
		}
	}
	return false
}

// Classify scores rules in ranking order against the text and the already
// extracted entities. The first matching rule decides; a winning score
// below ConfidenceThreshold degrades to UNKNOWN with the rule name kept
// for diagnostics. No matching rule at all yields UNKNOWN at confidence 0.
func (r *Router) Classify(text string, entities models.EntitySet) models.Classification {
	lower := strings.ToLower(text)
	for _, rule := range r.rules {
		score := rule.score(lower, entities)
		if score < rule.Trigger {
			continue
		}
		if score < ConfidenceThreshold {
			return models.Classification{
				Intent:     models.IntentUnknown,
				Confidence: score,
				RuleName:   rule.Name,
			}
		}
		return models.Classification{
			Intent:     rule.Intent,
			Confidence: score,
			RuleName:   rule.Name,
		}
	}
	return models.Classification{Intent: models.IntentUnknown, Confidence: 0}
}

// ==========================
// Default Rule Set
// ==========================

// DefaultRules is the production ranking. Order is deliberate: the letter
// and payslip rules carry distinctive vocabulary, the record rules depend
// on field words, and the policy rule comes last as the catch-all for
// policy questions.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "issue-letter",
			Intent:  models.IntentIssueLetter,
			Trigger: keywordBaseScore,
			Keywords: []string{
				"letter", "certificate", "verification", "proof of employment", "document",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bissue\b.*\b(letter|certificate)\b`),
				regexp.MustCompile(`(?i)\b(employment|verification|experience|salary)\s+(letter|certificate)\b`),
			},
			SupportingEntities: []models.EntityType{
				models.EntityDocumentType,
				models.EntityEmployeeID,
				models.EntityEffectiveDate,
			},
		},
		{
			Name:    "retrieve-payslip",
			Intent:  models.IntentRetrievePayslip,
			Trigger: keywordBaseScore,
			Keywords: []string{
				"payslip", "pay slip", "salary slip", "pay stub", "payroll statement",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(payslip|pay\s+slip|salary\s+slip|pay\s+stub)\b`),
			},
			SupportingEntities: []models.EntityType{
				models.EntityEmployeeID,
				models.EntityPayPeriod,
			},
		},
		{
			Name:    "update-record",
			Intent:  models.IntentUpdateHRISRecord,
			Trigger: keywordBaseScore,
			Keywords: []string{
				"update", "change", "correct", "modify",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(update|change|set|correct)\b.*\b(address|phone|email|name|bank|contact|marital)\b`),
			},
			SupportingEntities: []models.EntityType{
				models.EntityEmployeeID,
				models.EntityHRISField,
				models.EntityNewValue,
			},
		},
		{
			Name:    "query-record",
			Intent:  models.IntentQueryHRISRecord,
			Trigger: keywordBaseScore,
			Keywords: []string{
				"on file", "what is my", "show my", "look up",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(what\s+is|what's|show|view|check|look\s+up)\b.*\b(address|phone|email|name|bank|contact|marital)\b`),
			},
			SupportingEntities: []models.EntityType{
				models.EntityEmployeeID,
				models.EntityHRISField,
			},
		},
		{
			Name:    "policy-question",
			Intent:  models.IntentPolicyQuery,
			Trigger: keywordBaseScore,
			Keywords: []string{
				"policy", "policies", "guideline", "entitled to",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bpolic(y|ies)\b`),
			},
			SupportingEntities: []models.EntityType{
				models.EntityPolicyTopic,
			},
		},
	}
}
