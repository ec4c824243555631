// internal/models/intent.go
package models

// Intent is one of the closed set of request categories the router emits.
type Intent string

const (
	IntentIssueLetter      Intent = "ISSUE_LETTER"
	IntentRetrievePayslip  Intent = "RETRIEVE_PAYSLIP"
	IntentUpdateHRISRecord Intent = "UPDATE_HRIS_RECORD"
	IntentQueryHRISRecord  Intent = "QUERY_HRIS_RECORD"
	IntentPolicyQuery      Intent = "POLICY_QUERY"
	IntentUnknown          Intent = "UNKNOWN"
)

// ActionableIntents lists every intent that dispatches to a handler.
// UNKNOWN is deliberately absent; it routes straight to human review.
var ActionableIntents = []Intent{
	IntentIssueLetter,
	IntentRetrievePayslip,
	IntentUpdateHRISRecord,
	IntentQueryHRISRecord,
	IntentPolicyQuery,
}

// Classification is the router's verdict for one request. Confidence is
// advisory; the pipeline branches on Intent alone.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	RuleName   string  `json:"ruleName,omitempty"`
}
