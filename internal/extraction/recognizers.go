// internal/extraction/recognizers.go
package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hrdesk-automation/internal/models"
)

// ==========================
// Employee IDs
// ==========================

var employeeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bemployee\s+(?:id\s*[:#]?\s*)?([a-z]\d{3,6})\b`),
	regexp.MustCompile(`\b(E\d{3,6})\b`),
}

type employeeIDRecognizer struct{}

func (r *employeeIDRecognizer) Name() string { return "employee-id" }

func (r *employeeIDRecognizer) Recognize(text string) []Match {
	for _, p := range employeeIDPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return []Match{{Type: models.EntityEmployeeID, Value: strings.ToUpper(m[1])}}
		}
	}
	return nil
}

// ==========================
// Document Types
// ==========================

// documentTypeGroups maps keyword groups to canonical document types.
// Group order is the tie-break when text mentions several.
var documentTypeGroups = []struct {
	canonical string
	keywords  []string
}{
	{"employment_verification", []string{"employment verification", "verification letter", "proof of employment", "employment letter"}},
	{"salary_certificate", []string{"salary certificate", "salary letter", "income certificate"}},
	{"address_proof", []string{"address proof", "proof of address"}},
	{"experience_letter", []string{"experience letter", "relieving letter", "service certificate"}},
}

type documentTypeRecognizer struct{}

func (r *documentTypeRecognizer) Name() string { return "document-type" }

func (r *documentTypeRecognizer) Recognize(text string) []Match {
	lower := strings.ToLower(text)
	for _, group := range documentTypeGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return []Match{{Type: models.EntityDocumentType, Value: group.canonical}}
			}
		}
	}
	return nil
}

// ==========================
// Dates
// ==========================

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	isoDatePattern      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayYearPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*,?\s*(\d{4})\b`)
	dayMonthYearPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*,?\s*(\d{4})\b`)
	slashDatePattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

type dateRecognizer struct{}

func (r *dateRecognizer) Name() string { return "effective-date" }

func (r *dateRecognizer) Recognize(text string) []Match {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if v, ok := normalizeDate(m[1], m[2], m[3]); ok {
			return []Match{{Type: models.EntityEffectiveDate, Value: v}}
		}
	}
	if m := monthDayYearPattern.FindStringSubmatch(text); m != nil {
		month := monthIndex[strings.ToLower(m[1])]
		if v, ok := normalizeDate(m[3], strconv.Itoa(month), m[2]); ok {
			return []Match{{Type: models.EntityEffectiveDate, Value: v}}
		}
	}
	if m := dayMonthYearPattern.FindStringSubmatch(text); m != nil {
		month := monthIndex[strings.ToLower(m[2])]
		if v, ok := normalizeDate(m[3], strconv.Itoa(month), m[1]); ok {
			return []Match{{Type: models.EntityEffectiveDate, Value: v}}
		}
	}
	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		// Month-first unless the first number can only be a day.
		first, _ := strconv.Atoi(m[1])
		month, day := m[1], m[2]
		if first > 12 {
			month, day = m[2], m[1]
		}
		if v, ok := normalizeDate(m[3], month, day); ok {
			return []Match{{Type: models.EntityEffectiveDate, Value: v}}
		}
	}
	return nil
}

// normalizeDate renders YYYY-MM-DD, rejecting out-of-range components.
func normalizeDate(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if y < 1900 || y > 2200 || m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

// ==========================
// Pay Periods
// ==========================

var (
	yearMonthPattern     = regexp.MustCompile(`\b(\d{4})-(\d{2})\b`)
	monthYearPattern     = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})\b`)
	relativeMonthPattern = regexp.MustCompile(`(?i)\b(last|previous|this|current)\s+month\b`)
	trailingDayPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)?(\s+of)?\s*$`)
)

type payPeriodRecognizer struct {
	now func() time.Time
}

func (r *payPeriodRecognizer) Name() string { return "pay-period" }

func (r *payPeriodRecognizer) Recognize(text string) []Match {
	// YYYY-MM, unless it is the prefix of a full YYYY-MM-DD date.
	for _, loc := range yearMonthPattern.FindAllStringSubmatchIndex(text, -1) {
		end := loc[1]
		if end < len(text) && text[end] == '-' {
			continue
		}
		year := text[loc[2]:loc[3]]
		month := text[loc[4]:loc[5]]
		if v, ok := normalizePeriod(year, month); ok {
			return []Match{{Type: models.EntityPayPeriod, Value: v}}
		}
	}

	// Month-name plus year, unless a day number sits right before the month.
	for _, loc := range monthYearPattern.FindAllStringSubmatchIndex(text, -1) {
		before := strings.TrimRight(text[:loc[0]], " ")
		if trailingDayPattern.MatchString(before) {
			continue
		}
		month := monthIndex[strings.ToLower(text[loc[2]:loc[3]])]
		year := text[loc[4]:loc[5]]
		if v, ok := normalizePeriod(year, strconv.Itoa(month)); ok {
			return []Match{{Type: models.EntityPayPeriod, Value: v}}
		}
	}

	if m := relativeMonthPattern.FindStringSubmatch(text); m != nil {
		ref := r.now().UTC()
		switch strings.ToLower(m[1]) {
		case "last", "previous":
			ref = ref.AddDate(0, -1, 0)
		}
		return []Match{{
			Type:  models.EntityPayPeriod,
			Value: fmt.Sprintf("%04d-%02d", ref.Year(), int(ref.Month())),
		}}
	}

	return nil
}

func normalizePeriod(year, month string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	if err1 != nil || err2 != nil {
		return "", false
	}
	if y < 1900 || y > 2200 || m < 1 || m > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", y, m), true
}

// ==========================
// Record Updates and Lookups
// ==========================

const hrisFieldAlternation = `(home\s+address|address|phone\s+number|mobile\s+number|phone|email\s+address|email|last\s+name|first\s+name|bank\s+account|emergency\s+contact|marital\s+status)`

var (
	// The value runs to the end of the sentence. A period only terminates it
	// when followed by whitespace or end of text, so dotted values such as
	// email addresses survive.
	recordUpdatePattern = regexp.MustCompile(`(?i)\b(?:update|change|set|correct)\s+(?:my|the|his|her|their)?\s*` + hrisFieldAlternation + `\s+(?:to|as)\s+(.+?)(?:\.\s|\.$|[!?\n]|$)`)
	recordQueryPattern  = regexp.MustCompile(`(?i)\b(?:what\s+is|what's|show|view|check|look\s+up|get)\s+(?:my|the|his|her|their)?\s*` + hrisFieldAlternation + `\b`)
)

type recordUpdateRecognizer struct{}

func (r *recordUpdateRecognizer) Name() string { return "record-update" }

func (r *recordUpdateRecognizer) Recognize(text string) []Match {
	if m := recordUpdatePattern.FindStringSubmatch(text); m != nil {
		value := strings.Trim(strings.TrimSpace(m[2]), `"'`)
		if len(value) > 120 {
			value = value[:120]
		}
		if value != "" {
			return []Match{
				{Type: models.EntityHRISField, Value: canonicalField(m[1])},
				{Type: models.EntityNewValue, Value: value},
			}
		}
	}
	if m := recordQueryPattern.FindStringSubmatch(text); m != nil {
		return []Match{{Type: models.EntityHRISField, Value: canonicalField(m[1])}}
	}
	return nil
}

func canonicalField(raw string) string {
	f := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	switch f {
	case "phone number", "mobile number":
		return "phone"
	case "email address":
		return "email"
	case "home address":
		return "address"
	}
	return strings.ReplaceAll(f, " ", "_")
}

// ==========================
// Policy Topics
// ==========================

// policyTopics is scanned in order; specific phrasings precede the generic
// "leave" so "maternity leave policy" resolves to the specific topic.
var policyTopics = []string{
	"maternity leave",
	"paternity leave",
	"sick leave",
	"casual leave",
	"work from home",
	"remote work",
	"notice period",
	"probation",
	"dress code",
	"expense reimbursement",
	"travel",
	"overtime",
	"harassment",
	"grievance",
	"leave",
}

var policyPhrasePattern = regexp.MustCompile(`(?i)\bpolicy\s+(?:on|about|for|regarding)\s+([a-z][a-z ]{2,40}?)(?:\s*[.!?\n]|$)`)

type policyTopicRecognizer struct{}

func (r *policyTopicRecognizer) Name() string { return "policy-topic" }

func (r *policyTopicRecognizer) Recognize(text string) []Match {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "policy") {
		return nil
	}
	for _, topic := range policyTopics {
		if strings.Contains(lower, topic) {
			return []Match{{
				Type:  models.EntityPolicyTopic,
				Value: strings.ReplaceAll(topic, " ", "_"),
			}}
		}
	}
	if m := policyPhrasePattern.FindStringSubmatch(lower); m != nil {
		topic := strings.TrimSpace(m[1])
		if topic != "" {
			return []Match{{
				Type:  models.EntityPolicyTopic,
				Value: strings.ReplaceAll(topic, " ", "_"),
			}}
		}
	}
	return nil
}
